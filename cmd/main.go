package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/soracane/kwx/internal/services"
	"github.com/soracane/kwx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("ignoring unreadable config: %v", err)
		}
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
			"redirect_uri":  config.Credentials.Spotify.RedirectURI,
		}, config.Retry); err == nil {
			catalog = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "kwx",
		Usage:    "Extract keyword-matching artist tracks into Spotify playlists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	// Interrupts cancel between targets: finished playlist mutations stay
	// intact and no further target starts.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
