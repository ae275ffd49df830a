package main

import (
	"context"

	"github.com/soracane/kwx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the given path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Infof("wrote example config to %s", path)
	r.writePlainln("✓ Created %s", path)
	r.writePlainln("Fill in [credentials.spotify] and [[targets]], then run 'kwx sync --dry-run'.")
	return nil
}

// setupCommand handles first-run configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Where to write the config file",
				Value: defaultConfigPath,
			},
		},
		Action: r.SetupConfig,
	}
}
