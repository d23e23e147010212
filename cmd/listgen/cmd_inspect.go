/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/jellyfin"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the libraries and genres visible to the configured user",
	Long: `Connect to the media server and print the library IDs, collection
types, and genre names available for use in filter rules.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	client := jellyfin.NewClient(jellyfin.Config{
		BaseURL:  cfg.JellyfinURL,
		UseCache: cfg.CacheEnabled,
		CacheDir: cfg.CacheDir,
		MaxAge:   cfg.CacheMaxAge,
	}, logger)
	if err := client.Authenticate(ctx, cfg.JellyfinUsername, cfg.JellyfinPassword); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	libraries, err := client.Libraries(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Libraries:")
	for _, lib := range libraries {
		fmt.Printf("  %s  %-12s  %s\n", lib.ID, lib.CollectionType, lib.Name)
	}

	genres, err := client.Genres(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Genres:")
	for _, g := range genres {
		fmt.Printf("  %s\n", g.Name)
	}
	return nil
}
