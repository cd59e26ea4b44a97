package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/promocanvas/pkg/catalog"
	"github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/layout"
	"github.com/matzehuels/promocanvas/pkg/observability"
	"github.com/matzehuels/promocanvas/pkg/render"
)

// Runner encapsulates pipeline execution.
// Both CLI and API use this to avoid duplicating orchestration logic.
//
// The Runner is stateless except for the fetcher (and its image cache) and
// logger - it doesn't store pipeline results. Multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Fetcher *catalog.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner.
// If fetcher is nil, a default fetcher with a memory-only cache is used.
func NewRunner(fetcher *catalog.Fetcher, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if fetcher == nil {
		fetcher = catalog.NewFetcher(catalog.Config{}, nil, logger)
	}
	return &Runner{Fetcher: fetcher, Logger: logger}
}

// Compose runs the complete fetch → layout → render pipeline.
func (r *Runner) Compose(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	result := &Result{}
	result.Stats.Requested = len(opts.slots)

	// Stage 1: Fetch
	fetchStart := time.Now()
	var fractions []float64
	for _, s := range opts.slots {
		img, ok := r.Fetcher.Fetch(ctx, s.id)
		if !ok {
			result.Missing = append(result.Missing, s.id)
			continue
		}
		result.Resolved = append(result.Resolved, img)
		fractions = append(fractions, s.fraction)
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Resolved = len(result.Resolved)

	logger.Info("fetched images",
		"requested", result.Stats.Requested,
		"resolved", result.Stats.Resolved,
		"duration", result.Stats.FetchTime)
	if len(result.Missing) > 0 {
		logger.Warn("some identifiers could not be resolved", "missing", result.Missing)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	canvas := opts.Canvas()
	result.Placements = layout.Compute(result.Resolved, fractions, canvas)
	result.Stats.LayoutTime = time.Since(layoutStart)

	// Stage 3: Render
	renderStart := time.Now()
	artifact, err := render.Render(canvas, result.Placements, render.WithQuality(opts.Quality))
	result.Stats.RenderTime = time.Since(renderStart)
	size := 0
	if artifact != nil {
		size = len(artifact.Data)
	}
	observability.Composition().OnRenderComplete(ctx, len(result.Placements), size, result.Stats.RenderTime, err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInternal, err, "render")
		}
		return nil, err
	}
	result.Artifact = artifact

	logger.Info("rendered composite",
		"placements", len(result.Placements),
		"bytes", size,
		"duration", result.Stats.RenderTime)

	return result, nil
}
