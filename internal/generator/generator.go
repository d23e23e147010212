/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package generator ties the pipeline together: load the ruleset, pick
// a playlist for the current moment, materialize it against the
// catalog, and write the item list.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/history"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/output"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/playlist"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/ruleset"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/selection"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/telemetry"
)

// ViewerSource resolves the age of the viewer the list is generated
// for. The media server client implements this.
type ViewerSource interface {
	ViewerAge(ctx context.Context, userID string) (*int, error)
}

// Runner executes generation runs. It is safe to reuse across runs;
// the ruleset file is re-read on every run so edits take effect
// without a restart.
type Runner struct {
	rulesetPath  string
	outputPath   string
	viewerUserID string

	catalog catalog.Catalog
	viewers ViewerSource
	store   *history.Store
	logger  zerolog.Logger

	now func() time.Time
}

// Options configures a Runner. Viewers and Store may be nil; a nil
// Viewers disables user_age conditions and a nil Store disables run
// history.
type Options struct {
	RulesetPath  string
	OutputPath   string
	ViewerUserID string
	Catalog      catalog.Catalog
	Viewers      ViewerSource
	Store        *history.Store
	Now          func() time.Time
}

// New creates a Runner.
func New(opts Options, logger zerolog.Logger) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		rulesetPath:  opts.RulesetPath,
		outputPath:   opts.OutputPath,
		viewerUserID: opts.ViewerUserID,
		catalog:      opts.Catalog,
		viewers:      opts.Viewers,
		store:        opts.Store,
		logger:       logger.With().Str("component", "generator").Logger(),
		now:          now,
	}
}

// Result describes a completed run.
type Result struct {
	RunID    string        `json:"run_id"`
	Playlist string        `json:"playlist"`
	ItemIDs  []string      `json:"item_ids"`
	Duration time.Duration `json:"duration"`
}

// Run performs one generation run end to end.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := r.now()
	runID := uuid.NewString()
	logger := r.logger.With().Str("run_id", runID).Logger()

	result, err := r.run(ctx, runID, start, logger)
	elapsed := time.Since(start)
	telemetry.RunDuration.Observe(elapsed.Seconds())

	run := &history.Run{
		ID:         runID,
		DurationMS: elapsed.Milliseconds(),
		Status:     history.StatusOK,
	}
	switch {
	case errors.Is(err, selection.ErrNoMatch):
		run.Status = history.StatusNoMatch
		run.Error = err.Error()
	case err != nil:
		run.Status = history.StatusError
		run.Error = err.Error()
	default:
		run.Playlist = result.Playlist
		run.ItemCount = len(result.ItemIDs)
	}
	telemetry.RunsTotal.WithLabelValues(run.Status).Inc()

	if r.store != nil {
		if recErr := r.store.Record(ctx, run); recErr != nil {
			logger.Error().Err(recErr).Msg("failed to record run")
		}
	}

	if err != nil {
		return nil, err
	}
	result.Duration = elapsed
	return result, nil
}

func (r *Runner) run(ctx context.Context, runID string, start time.Time, logger zerolog.Logger) (*Result, error) {
	doc, err := ruleset.Load(r.rulesetPath)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}

	viewer, err := r.resolveViewer(ctx)
	if err != nil {
		return nil, err
	}

	name, err := selection.New(logger).Select(doc.Selection, start, viewer)
	if err != nil {
		return nil, err
	}
	telemetry.PlaylistSelected.WithLabelValues(name).Inc()

	def, ok := doc.Playlist(name)
	if !ok {
		// validate() guarantees every selection target resolves
		return nil, fmt.Errorf("playlist %q not found", name)
	}

	ids, err := playlist.NewBuilder(r.catalog, logger).Build(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("build playlist %q: %w", def.Name, err)
	}

	if err := output.Write(r.outputPath, def.Name, ids); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	telemetry.PlaylistItems.WithLabelValues(def.Name).Set(float64(len(ids)))

	logger.Info().
		Str("playlist", def.Name).
		Int("items", len(ids)).
		Str("output", r.outputPath).
		Msg("playlist generated")

	return &Result{RunID: runID, Playlist: def.Name, ItemIDs: ids}, nil
}

func (r *Runner) resolveViewer(ctx context.Context) (selection.Viewer, error) {
	if r.viewers == nil || r.viewerUserID == "" {
		return selection.Viewer{}, nil
	}
	age, err := r.viewers.ViewerAge(ctx, r.viewerUserID)
	if err != nil {
		return selection.Viewer{}, fmt.Errorf("resolve viewer %s: %w", r.viewerUserID, err)
	}
	return selection.Viewer{Age: age}, nil
}
