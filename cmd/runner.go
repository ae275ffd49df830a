package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/soracane/kwx/internal/services"
	"github.com/soracane/kwx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config  *shared.Config
	catalog services.Catalog
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, cacheCommand, authCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps in the config at path when it differs from what the
// Runner was built with, rebuilding the catalog from its credentials.
func (r *Runner) reloadConfig(path string) error {
	if path == "" || path == defaultConfigPath {
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.config = config

	svc, err := services.NewSpotifyService(map[string]string{
		"client_id":     config.Credentials.Spotify.ClientID,
		"client_secret": config.Credentials.Spotify.ClientSecret,
		"redirect_uri":  config.Credentials.Spotify.RedirectURI,
	}, config.Retry)
	if err != nil {
		return err
	}
	r.catalog = svc

	return nil
}

// authenticate signs the catalog in from the environment. SPOTIFY_ACCESS_TOKEN
// or SPOTIFY_AUTH_CODE must be present; token acquisition itself lives outside
// this tool (see the auth command).
func (r *Runner) authenticate(ctx context.Context) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure Spotify credentials first (kwx setup)", shared.ErrMissingCredentials)
	}

	return r.catalog.Authenticate(ctx, map[string]string{
		"access_token": os.Getenv("SPOTIFY_ACCESS_TOKEN"),
		"auth_code":    os.Getenv("SPOTIFY_AUTH_CODE"),
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
