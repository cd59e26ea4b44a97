// Package pkg provides the core libraries for promocanvas.
//
// # Overview
//
// Promocanvas turns up to three catalog product identifiers into a single
// promotional JPEG: each product's main image is fetched from the catalog,
// scaled to a fraction of the canvas width, and centred in a band across a
// fixed-size canvas. The pkg directory is organized into these areas:
//
//  1. [catalog] - Image acquisition (detail page scraping, retries, caching)
//  2. [layout] - Pure placement math for 1-3 images
//  3. [render] - Compositing and JPEG encoding
//  4. [pipeline] - Orchestration (fetch → layout → render)
//  5. [ledger] - Usage ledger with optimistic concurrency
//
// # Architecture
//
// The typical data flow:
//
//	Identifiers + fractions
//	         ↓
//	    [catalog] package (detail page → image URL → decoded image)
//	         ↓
//	    [layout] package (placements on the canvas)
//	         ↓
//	    [render] package (composite + JPEG)
//	         ↓
//	    promo.jpg, optionally recorded in the [ledger]
//
// Unresolvable identifiers never fail a composition. They are reported as
// missing and the remaining images are laid out as if only they had been
// requested.
//
// # Quick Start
//
//	fetcher := catalog.NewFetcher(catalog.Config{}, nil, logger)
//	runner := pipeline.NewRunner(fetcher, logger)
//	result, err := runner.Compose(ctx, pipeline.Options{
//	    Identifiers: []string{"B0C1H26C46", "B09B8V1LZ3"},
//	})
//
// # Main Packages
//
// ## Domain
//
// [catalog] - Resolves identifiers to images. Candidate image URLs come from
// an ordered list of goquery extractors; downloads go through
// [integrations] and are retried with [httputil]. Resolved images live in an
// in-process cache, optionally backed by a [cache] store.
//
// [layout] - Computes placements. One image is centred; two and three are
// spread symmetrically around the centre with fixed spacing.
//
// [render] - Flattens images onto the background with imaging and encodes
// the result.
//
// [ledger] - Append-only usage records kept in CSV (local file or a GitHub
// repository) or MongoDB. Concurrent writers are detected by version and
// retried.
//
// ## Infrastructure
//
// [cache] - Byte cache backends: file, Redis and a no-op cache.
//
// [integrations] - HTTP client with browser headers and status mapping, plus
// a GitHub contents client used by the ledger.
//
// [httputil] - Retry policies.
//
// [observability] - Hooks for cache, HTTP and composition events.
//
// [errors] - Coded errors shared by every package.
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/catalog
// [layout]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/pipeline
// [ledger]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/ledger
// [cache]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/integrations
// [httputil]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/promocanvas/pkg/errors
package pkg
