/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/ruleset"
)

var validateCmd = &cobra.Command{
	Use:   "validate [ruleset]",
	Short: "Check a ruleset file without contacting the media server",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := flagRuleset
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = "mediabar.yaml"
	}

	doc, err := ruleset.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("%s: ok (%d selection rules, %d playlists)\n", path, len(doc.Selection), len(doc.Playlists))
	return nil
}
