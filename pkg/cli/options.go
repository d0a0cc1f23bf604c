package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lake-crud/internal/app"
	"lake-crud/internal/config"
)

// options holds the persistent flag values shared by every command.
type options struct {
	configDir string
	env       string
	output    string
	pooled    bool
}

// load resolves settings from the config directory and the environment and
// builds the run logger, which writes JSON to the command's stderr.
func (o *options) load(cmd *cobra.Command) (*config.Settings, *slog.Logger, error) {
	if err := config.LoadDotEnv(filepath.Join(o.configDir, ".env")); err != nil {
		return nil, nil, fmt.Errorf("load .env: %w", err)
	}
	settings, err := config.Load(o.configDir, o.env)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("pooled") {
		settings.Pooled = o.pooled
	}

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: settings.SlogLevel(),
	})).With("run_id", uuid.NewString(), "command", cmd.CommandPath())
	for _, w := range settings.Warnings {
		logger.Warn("config", "warning", w)
	}
	return settings, logger, nil
}

// open loads settings and wires the application. The caller must Close the
// returned App.
func (o *options) open(cmd *cobra.Command) (*app.App, error) {
	settings, logger, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(*settings, logger)
}

// withApp opens the application for the duration of fn.
func (o *options) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.Logger.Warn("close connector", "error", cerr)
		}
	}()
	return fn(a)
}
