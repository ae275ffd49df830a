package tasks

import (
	"strings"

	"github.com/soracane/kwx/internal/models"
)

// FilterByKeyword selects tracks whose title contains keyword,
// case-insensitively. An empty keyword matches every track. The relative
// order of matching tracks is preserved.
func FilterByKeyword(tracks []models.Track, keyword string) []models.Track {
	if keyword == "" {
		return append([]models.Track(nil), tracks...)
	}

	needle := strings.ToLower(keyword)
	var matched []models.Track
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			matched = append(matched, t)
		}
	}

	return matched
}

// Diff returns the candidates whose IDs are not in existing, preserving
// candidate order. Comparison is by track ID only.
func Diff(candidates []models.Track, existing map[string]struct{}) []models.Track {
	var missing []models.Track
	for _, t := range candidates {
		if _, found := existing[t.ID]; !found {
			missing = append(missing, t)
		}
	}
	return missing
}
