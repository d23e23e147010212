/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package history persists one record per generation run so that past
// playlist decisions can be inspected after the fact.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Run statuses.
const (
	StatusOK      = "ok"
	StatusNoMatch = "no_match"
	StatusError   = "error"
)

// Run is a single generation run.
type Run struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Playlist   string    `json:"playlist"`
	ItemCount  int       `json:"item_count"`
	DurationMS int64     `json:"duration_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store records and queries generation runs.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open opens (or creates) the run database at path and migrates the
// schema.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores a run. A missing ID or timestamp is filled in.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return err
	}

	s.logger.Debug().
		Str("id", run.ID).
		Str("playlist", run.Playlist).
		Str("status", run.Status).
		Msg("run recorded")

	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	var runs []Run
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
