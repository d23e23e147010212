/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation pass and write the item list",
	Long: `Evaluate the selection rules for the current moment, build the chosen
playlist against the media library, and write the result.

Examples:
  # Generate using the configured ruleset and output
  listgen generate

  # Generate from a specific ruleset into a specific file
  listgen generate --ruleset /etc/listgen/mediabar.yaml --output /var/lib/jellyfin/list.txt
`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, _, cleanup, err := buildRunner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d items written to %s in %s\n",
		result.Playlist, len(result.ItemIDs), cfg.OutputPath, result.Duration.Round(time.Millisecond))
	return nil
}
