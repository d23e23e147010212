/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package config covers process level configuration read from
// environment variables. The ruleset document itself lives in its own
// YAML file; everything here is deployment plumbing around it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the validated process configuration.
type Config struct {
	Environment string

	// Jellyfin connection
	JellyfinURL      string
	JellyfinUsername string
	JellyfinPassword string

	// Optional viewer user whose parental rating policy drives
	// user_age conditions. Empty disables viewer context.
	ViewerUserID string

	// Paths
	RulesetPath string
	OutputPath  string
	HistoryDB   string // empty disables run history

	// HTTP response cache for catalog queries
	CacheEnabled bool
	CacheDir     string
	CacheMaxAge  time.Duration

	// serve mode
	HTTPBind string
	HTTPPort int
}

// Load reads environment variables, applies defaults, and validates
// the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:      getEnv("LISTGEN_ENV", "development"),
		JellyfinURL:      getEnv("LISTGEN_JELLYFIN_URL", ""),
		JellyfinUsername: getEnv("LISTGEN_JELLYFIN_USERNAME", ""),
		JellyfinPassword: getEnv("LISTGEN_JELLYFIN_PASSWORD", ""),
		ViewerUserID:     getEnv("LISTGEN_VIEWER_USER_ID", ""),
		RulesetPath:      getEnv("LISTGEN_RULESET", "mediabar.yaml"),
		OutputPath:       getEnv("LISTGEN_OUTPUT", "list.txt"),
		HistoryDB:        getEnv("LISTGEN_HISTORY_DB", "listgen.db"),
		CacheEnabled:     getEnvBool("LISTGEN_CACHE_ENABLED", true),
		CacheDir:         getEnv("LISTGEN_CACHE_DIR", ".httpcache"),
		CacheMaxAge:      time.Duration(getEnvInt("LISTGEN_CACHE_MAX_AGE_MINUTES", 60)) * time.Minute,
		HTTPBind:         getEnv("LISTGEN_HTTP_BIND", "0.0.0.0"),
		HTTPPort:         getEnvInt("LISTGEN_HTTP_PORT", 8080),
	}

	if cfg.JellyfinURL == "" {
		return nil, fmt.Errorf("LISTGEN_JELLYFIN_URL must be provided")
	}
	if cfg.JellyfinUsername == "" {
		return nil, fmt.Errorf("LISTGEN_JELLYFIN_USERNAME must be provided")
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("LISTGEN_HTTP_PORT %d out of range", cfg.HTTPPort)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}
