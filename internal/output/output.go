/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package output persists the generated list in the legacy media-bar
// format: the playlist name on the first line, then one item ID per
// line.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write atomically replaces the list file at path.
func Write(path, playlistName string, itemIDs []string) error {
	var sb strings.Builder
	sb.WriteString(playlistName)
	sb.WriteByte('\n')
	sb.WriteString(strings.Join(itemIDs, "\n"))

	tmp, err := os.CreateTemp(filepath.Dir(path), ".listgen-*")
	if err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("write list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	return nil
}
