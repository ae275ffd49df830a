// Package formatter renders sync results for the console: a styled
// per-target track listing and an aggregate summary table.
package formatter

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/soracane/kwx/internal/tasks"
)

// Rows shown per target before truncating, unless verbose.
const maxListedTracks = 5

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// RenderTargetReport renders the outcome of a single target: the would-add
// or added track listing, truncated to five rows unless verbose.
func RenderTargetReport(res tasks.SyncResult, mode tasks.Mode, verbose bool) string {
	var buf bytes.Buffer

	label := res.Target.Name
	if res.ArtistName != "" {
		label = fmt.Sprintf("%s (%s → %s)", res.Target.Name, res.ArtistName, res.PlaylistName)
	}
	buf.WriteString(titleStyle.Render(label))
	buf.WriteString("\n")

	if res.Err != nil {
		buf.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", res.Err)))
		buf.WriteString("\n")
		return buf.String()
	}

	if verbose {
		buf.WriteString(dimStyle.Render(fmt.Sprintf("keyword %q matched %d tracks", res.Target.Keyword, len(res.Candidates))))
		buf.WriteString("\n")
	}

	if len(res.ToAdd) == 0 {
		buf.WriteString(dimStyle.Render("no new tracks to add"))
		buf.WriteString("\n")
		return buf.String()
	}

	switch mode {
	case tasks.DryRun:
		buf.WriteString(fmt.Sprintf("[DRY RUN] %d new tracks would be added:\n", len(res.ToAdd)))
	default:
		buf.WriteString(fmt.Sprintf("%d new tracks added:\n", res.Added))
	}

	for i, t := range res.ToAdd {
		if !verbose && i == maxListedTracks {
			buf.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more tracks", len(res.ToAdd)-maxListedTracks)))
			buf.WriteString("\n")
			break
		}
		line := fmt.Sprintf("  %02d. %s", i+1, t.Title)
		if verbose && t.ReleaseDate != "" {
			line += dimStyle.Render(fmt.Sprintf(" (released %s)", t.ReleaseDate))
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	if mode == tasks.Live {
		buf.WriteString(okStyle.Render("✓ playlist updated"))
		buf.WriteString("\n")
	}

	return buf.String()
}

// RenderSummaryTable renders the aggregate run summary as a table with one
// row per target.
func RenderSummaryTable(sum *tasks.RunSummary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Target", "Candidates", "To Add", "Added", "Status"})

	for _, res := range sum.Results {
		status := "ok"
		switch {
		case res.Err != nil:
			status = "failed"
		case len(res.ToAdd) == 0:
			status = "up to date"
		case sum.Mode == tasks.DryRun:
			status = "pending"
		}
		tw.AppendRow(table.Row{
			res.Target.Name,
			len(res.Candidates),
			len(res.ToAdd),
			res.Added,
			status,
		})
	}

	tw.AppendFooter(table.Row{"total", "", "", sum.TotalAdded, failureNote(sum.Failed)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	return tw.Render()
}

func failureNote(failed int) string {
	if failed == 0 {
		return "ok"
	}
	return strconv.Itoa(failed) + " failed"
}
