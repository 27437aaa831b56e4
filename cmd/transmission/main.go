// Command transmission runs the torrent session headless: no window,
// same settings file, same engine. Useful on servers and for seeding
// boxes; the desktop build lives at the repository root.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rkost/transmission/internal/metrics"
	"github.com/rkost/transmission/internal/prefs"
	"github.com/rkost/transmission/internal/session"
	"github.com/rkost/transmission/pkg/utils/logging"
)

func main() {
	var (
		configDir = flag.String("config-dir", "", "settings and state directory")
		logLevel  = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	level := new(slog.LevelVar)
	level.Set(parseLevel(*logLevel))
	opts := logging.DefaultOptions()
	opts.SlogOpts.Level = level
	log := slog.New(logging.NewPrettyHandler(os.Stdout, &opts))
	slog.SetDefault(log)

	dir := *configDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			log.Error("no config directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(base, "transmission")
	}

	store, err := prefs.Open(dir)
	if err != nil {
		log.Error("settings initialization failed", "error", err)
		os.Exit(1)
	}

	sess, err := session.New(dir, store, log)
	if err != nil {
		log.Error("session initialization failed", "error", err)
		os.Exit(1)
	}
	sess.LoadSaved()

	srv := metrics.NewServer(log)
	if store.Bool(prefs.KeyMetricsEnabled) {
		srv.Start(store.String(prefs.KeyMetricsBindAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				down, up, active := sess.TotalStats()
				metrics.TorrentsManaged.Set(float64(sess.Count()))
				metrics.TorrentsActive.Set(float64(active))
				metrics.DownloadedBytes.Set(float64(down))
				metrics.UploadedBytes.Set(float64(up))
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		srv.Stop()
		sess.Close()
		return ctx.Err()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("runner stopped", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
