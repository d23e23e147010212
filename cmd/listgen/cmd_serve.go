/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/server"
)

var flagInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a long-lived service with an HTTP trigger API",
	Long: `Start an HTTP server exposing POST /generate, GET /runs, GET /list.txt,
/healthz, and Prometheus /metrics. With --interval the generator also
runs periodically on its own.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&flagInterval, "interval", 0, "Also regenerate periodically (0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Msg("listgen starting")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	runner, store, cleanup, err := buildRunner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv := server.New(addr, runner, store, cfg.OutputPath, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	if flagInterval > 0 {
		go func() {
			ticker := time.NewTicker(flagInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := runner.Run(ctx); err != nil {
						logger.Error().Err(err).Msg("scheduled run failed")
					}
				}
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down gracefully...")
	cancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer timeoutCancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("listgen stopped")
	return nil
}
