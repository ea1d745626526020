// Command kvstore runs the durable key-value store against standard
// input/output. It takes no flags: the data directory is fixed to ./data
// and the cache capacity to 100 entries.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/intellect4all/kvstore/store"
)

func main() {
	logger := kitlog.NewLogfmtLogger(os.Stderr)
	logger = level.NewFilter(logger, level.AllowInfo())
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	if err := run(logger); err != nil {
		level.Error(logger).Log("msg", "fatal error", "err", err)
		os.Exit(1)
	}
}

func run(logger kitlog.Logger) error {
	cfg := store.DefaultConfig("./data")

	s, err := store.New(cfg, logger)
	if err != nil {
		return err
	}

	if err := s.Replay(); err != nil {
		level.Warn(logger).Log("msg", "starting with partial or empty state", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx, os.Stdin, os.Stdout); err != nil {
		return err
	}

	n, err := s.Snapshot()
	if err != nil {
		level.Error(logger).Log("msg", "snapshot on shutdown failed", "err", err)
		return err
	}
	level.Info(logger).Log("msg", "clean shutdown", "snapshot_pages", n)
	return nil
}
