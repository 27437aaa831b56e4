package main

import (
	"context"
	"embed"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/rkost/transmission/internal/app"
	"github.com/rkost/transmission/internal/metrics"
	"github.com/rkost/transmission/internal/prefs"
	"github.com/rkost/transmission/internal/session"
	"github.com/rkost/transmission/pkg/utils/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	level := new(slog.LevelVar)
	memLog := logging.NewMemoryHandler(500, level)
	log := setupLogger(level, memLog)

	configDir, err := defaultConfigDir()
	if err != nil {
		log.Error("no config directory", "error", err)
		os.Exit(1)
	}
	store, err := prefs.Open(configDir)
	if err != nil {
		log.Error("settings initialization failed", "error", err)
		os.Exit(1)
	}

	sess, err := session.New(configDir, store, log)
	if err != nil {
		log.Error("session initialization failed", "error", err)
		os.Exit(1)
	}

	shell := app.New(app.Config{
		Logger:   log,
		LogLevel: level,
		MemLog:   memLog,
		Prefs:    store,
		Engine:   app.NewEngine(sess),
		Metrics:  metrics.NewServer(log),
	})

	err = wails.Run(&options.App{
		Title:       "Transmission",
		Width:       store.Int(prefs.KeyMainWindowWidth),
		Height:      store.Int(prefs.KeyMainWindowHeight),
		AssetServer: &assetserver.Options{Assets: assets},
		OnStartup:   shell.Startup,
		OnBeforeClose: func(_ context.Context) bool {
			return shell.OnBeforeClose()
		},
		BackgroundColour: &options.RGBA{R: 34, G: 34, B: 34, A: 1},
		Bind:             []any{shell},
	})
	if err != nil {
		log.Error("failed to start wails", "error", err)
		os.Exit(1)
	}
}

// setupLogger builds the process logger: pretty output on stdout plus
// an in-memory ring for the message log window.
func setupLogger(level *slog.LevelVar, memLog *logging.MemoryHandler) *slog.Logger {
	opts := logging.DefaultOptions()
	opts.SlogOpts.Level = level
	opts.SlogOpts.AddSource = false

	pretty := logging.NewPrettyHandler(os.Stdout, &opts)
	l := slog.New(logging.NewTee(pretty, memLog))
	slog.SetDefault(l)
	return l
}

func defaultConfigDir() (string, error) {
	if dir := os.Getenv("TRANSMISSION_HOME"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "transmission"), nil
}
