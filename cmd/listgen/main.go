/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/config"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/generator"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/history"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/jellyfin"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/logging"
)

var (
	logger zerolog.Logger
	cfg    *config.Config

	flagRuleset string
	flagOutput  string
	flagNoCache bool
)

var rootCmd = &cobra.Command{
	Use:   "listgen",
	Short: "Rule-driven playlist generator for the Jellyfin Media Bar",
	Long: "listgen picks a playlist from a YAML ruleset based on time and viewer " +
		"conditions, materializes it against a Jellyfin library, and writes the " +
		"item list the Media Bar plugin reads.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRuleset, "ruleset", "", "Path to the ruleset YAML (overrides LISTGEN_RULESET)")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "Path of the generated list (overrides LISTGEN_OUTPUT)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the media server response cache")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if flagRuleset != "" {
		cfg.RulesetPath = flagRuleset
	}
	if flagOutput != "" {
		cfg.OutputPath = flagOutput
	}
	if flagNoCache {
		cfg.CacheEnabled = false
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

// buildRunner connects to the media server and assembles the
// generation pipeline. The returned cleanup closes the history store.
func buildRunner(ctx context.Context) (*generator.Runner, *history.Store, func(), error) {
	client := jellyfin.NewClient(jellyfin.Config{
		BaseURL:  cfg.JellyfinURL,
		UseCache: cfg.CacheEnabled,
		CacheDir: cfg.CacheDir,
		MaxAge:   cfg.CacheMaxAge,
	}, logger)

	if err := client.Authenticate(ctx, cfg.JellyfinUsername, cfg.JellyfinPassword); err != nil {
		return nil, nil, nil, fmt.Errorf("authenticate: %w", err)
	}

	var store *history.Store
	cleanup := func() {}
	if cfg.HistoryDB != "" {
		var err error
		store, err = history.Open(cfg.HistoryDB, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open history db: %w", err)
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close history db")
			}
		}
	}

	runner := generator.New(generator.Options{
		RulesetPath:  cfg.RulesetPath,
		OutputPath:   cfg.OutputPath,
		ViewerUserID: cfg.ViewerUserID,
		Catalog:      client,
		Viewers:      client,
		Store:        store,
	}, logger)

	return runner, store, cleanup, nil
}
