package main

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/lobby-client/internal/client"
	"github.com/DoyleJ11/lobby-client/internal/config"
	"github.com/DoyleJ11/lobby-client/internal/httpapi"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(ctx, cfg, logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The session ending ends the process; there is no reconnect.
		defer stop()
		return c.Run(gctx)
	})
	g.Go(func() error {
		return printTranscript(gctx, c, os.Stdout)
	})

	if cfg.DebugAddr != "" {
		srv := &http.Server{Addr: cfg.DebugAddr, Handler: httpapi.SetupRoutes(c)}
		g.Go(func() error {
			logger.Info("debug api listening", zap.String("addr", cfg.DebugAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// Reading stdin cannot be interrupted, so it stays outside the group.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			quit, err := runCommand(gctx, c, os.Stdout, scanner.Text())
			if err != nil {
				logger.Warn("command failed", zap.Error(err))
			}
			if quit {
				break
			}
		}
		stop()
	}()

	err = multierr.Append(g.Wait(), c.Close())
	if err != nil {
		logger.Error("client stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
