package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/pyimpl"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	settings   pyimpl.Settings
	classifier pyimpl.MethodClassifier
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. A nil classifier
// selects the signature classifier shipped with the generator.
func NewApp(outW io.Writer, config *Config, classifier pyimpl.MethodClassifier) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	if classifier == nil {
		classifier = sigclass.New()
	}

	a := &App{
		outW:       outW,
		logger:     logger,
		config:     config,
		settings:   config.Settings(),
		classifier: classifier,
	}
	logger.Debug("App configured.", "strategy", config.Strategy, "jobs", config.Jobs, "check_only", config.CheckOnly)
	return a
}

// Config returns the configuration the app was built with.
func (a *App) Config() *Config {
	return a.config
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
