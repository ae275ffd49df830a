package main

import (
	"context"
	"fmt"

	"github.com/soracane/kwx/internal/services"
	"github.com/soracane/kwx/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	svc, ok := r.catalog.(*services.SpotifyService)
	if !ok || svc == nil {
		return nil, fmt.Errorf("%w: configure Spotify credentials first (kwx setup)", shared.ErrMissingCredentials)
	}
	return svc, nil
}

// AuthURL prints the OAuth2 authorization URL to open in a browser.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	svc, err := r.spotifyService()
	if err != nil {
		return err
	}

	state := shared.GenerateID()
	r.writePlainln("Open this URL to authorize kwx, then pass the returned code to 'kwx auth token':")
	return r.writePlainln("%s", svc.GetAuthURL(state))
}

// AuthToken exchanges an authorization code for an access token and prints it.
//
// The token is printed rather than stored; export it as SPOTIFY_ACCESS_TOKEN
// (or put it in .env) for sync runs.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	svc, err := r.spotifyService()
	if err != nil {
		return err
	}

	code := cmd.String("code")
	if code == "" {
		return fmt.Errorf("%w: --code", shared.ErrMissingArgument)
	}

	if err := svc.Authenticate(ctx, map[string]string{"auth_code": code}); err != nil {
		return err
	}

	token := svc.Token()
	if token == nil {
		return shared.ErrAuthFailed
	}

	r.logger.Info("authentication successful")
	r.writePlainln("SPOTIFY_ACCESS_TOKEN=%s", token.AccessToken)
	if token.RefreshToken != "" {
		r.writePlainln("SPOTIFY_REFRESH_TOKEN=%s", token.RefreshToken)
	}
	return nil
}

// authCommand handles OAuth2 helper operations
func authCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "OAuth2 helpers for Spotify",
		Commands: []*cli.Command{
			{
				Name:   "url",
				Usage:  "Print the authorization URL",
				Flags:  []cli.Flag{configFlag},
				Action: r.AuthURL,
			},
			{
				Name:  "token",
				Usage: "Exchange an authorization code for an access token",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "code",
						Usage:    "Authorization code from the redirect URL",
						Required: true,
					},
				},
				Action: r.AuthToken,
			},
		},
	}
}
