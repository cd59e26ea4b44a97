// Package pipeline provides the composition pipeline for promocanvas.
//
// This package implements the complete fetch → layout → render pipeline used
// by both the CLI and the HTTP server, so both entry points behave the same.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: resolve each identifier to a product image, sequentially in
//     slot order (cache first, then the catalog)
//  2. Layout: place the images that resolved, with their own fractions
//  3. Render: compose and encode the JPEG
//
// Identifiers that cannot be resolved are reported in [Result.Missing] and
// do not fail the request. When none resolve, the result is a blank canvas
// in the background colour; only invalid options and encoder failures
// produce errors.
//
// # Usage
//
//	fetcher := catalog.NewFetcher(catalog.Config{}, imageCache, logger)
//	runner := pipeline.NewRunner(fetcher, logger)
//	result, err := runner.Compose(ctx, pipeline.Options{
//	    Identifiers: []string{"B0C1H26C46", "B09B8V1LZ3"},
//	    Fractions:   []float64{0.25, 0.25},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("promo.jpg", result.Artifact.Data, 0o644)
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/promocanvas/pkg/catalog"
	"github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/layout"
	"github.com/matzehuels/promocanvas/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// MaxIdentifiers is the number of slots per composition.
	MaxIdentifiers = layout.MaxImages

	// DefaultFraction is used for slots without an explicit fraction.
	DefaultFraction = layout.DefaultFraction

	// DefaultBackground is the default canvas colour.
	DefaultBackground = "#ffffff"

	// DefaultQuality is the default JPEG quality.
	DefaultQuality = render.DefaultQuality
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one composition.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Identifiers are catalog product identifiers, one per slot. Blank
	// entries leave their slot unrequested.
	Identifiers []string `json:"identifiers"`

	// Fractions are aligned with Identifiers by index. Each must lie in
	// [0.1, 0.6]; sums are not checked.
	Fractions []float64 `json:"fractions,omitempty"`

	// Canvas options
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Background string `json:"background,omitempty"`

	// Render options
	Quality int `json:"quality,omitempty"`

	// Runtime options (not serialized). Logger overrides the runner's
	// logger for this call.
	Logger *log.Logger `json:"-"`

	// Filled by ValidateAndSetDefaults.
	slots     []slot
	canvas    layout.Canvas
	validated bool
}

// slot is one requested, non-blank position.
type slot struct {
	id       string
	fraction float64
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifact is the encoded composite.
	Artifact *render.Artifact

	// Placements in slot order, for the images that resolved.
	Placements []layout.Placement

	// Resolved images, aligned with Placements.
	Resolved []*catalog.ResolvedImage

	// Missing lists requested identifiers that could not be resolved.
	Missing []string

	// Stats contains timing and count information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Requested  int
	Resolved   int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the request and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
// Every failure carries [errors.ErrCodeInvalidInput].
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	var slots []slot
	for i, raw := range o.Identifiers {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if err := errors.ValidateIdentifier(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "slot %d", i+1)
		}
		frac := DefaultFraction
		if i < len(o.Fractions) {
			frac = o.Fractions[i]
			if err := errors.ValidateFraction(frac); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "slot %d", i+1)
			}
		}
		slots = append(slots, slot{id: id, fraction: frac})
	}
	if len(slots) > MaxIdentifiers {
		return errors.New(errors.ErrCodeInvalidInput, "at most %d identifiers per composition, got %d", MaxIdentifiers, len(slots))
	}

	if o.Width == 0 {
		o.Width = layout.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = layout.DefaultHeight
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	bg, err := layout.ParseColor(o.Background)
	if err != nil {
		return err
	}
	canvas := layout.Canvas{Width: o.Width, Height: o.Height, Background: bg}
	if err := canvas.Validate(); err != nil {
		return err
	}

	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality %d out of range [1, 100]", o.Quality)
	}

	o.slots = slots
	o.canvas = canvas
	o.validated = true
	return nil
}

// Canvas returns the validated canvas. Call ValidateAndSetDefaults first.
func (o *Options) Canvas() layout.Canvas { return o.canvas }

// Requested returns the trimmed, non-blank identifiers in slot order.
// Call ValidateAndSetDefaults first.
func (o *Options) Requested() []string {
	ids := make([]string, len(o.slots))
	for i, s := range o.slots {
		ids[i] = s.id
	}
	return ids
}
