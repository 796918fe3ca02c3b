package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/caption-transcript/internal/config"
	"github.com/MimeLyc/caption-transcript/internal/httpapi"
	"github.com/MimeLyc/caption-transcript/internal/persistence"
	"github.com/MimeLyc/caption-transcript/pkg/icron"
	"github.com/MimeLyc/caption-transcript/pkg/log"
)

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

func serve(ctx context.Context, cfg *config.Config, svc transcriber, store *persistence.SQLiteStore) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if store != nil {
		if _, err := store.SchedulePurge(c, cfg.Cache.PurgeCron); err != nil {
			return err
		}
		if next, err := icron.NextRun(cfg.Cache.PurgeCron, time.Now()); err == nil {
			log.Info("Next cache purge at %s", next.Format(time.RFC3339))
		}
	}

	srv := httpapi.NewServer(svc,
		httpapi.WithMaxConcurrent(cfg.HTTP.MaxConcurrent),
		httpapi.WithRateLimit(cfg.HTTP.RatePerMinute),
	)
	return runWithComponents(ctx, cfg, c, srv)
}

// runWithComponents starts cron and the HTTP server and stops both when ctx ends.
func runWithComponents(ctx context.Context, cfg *config.Config, c cronEngine, srv httpServer) error {
	c.Start()
	defer c.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
