// Package catalog resolves catalog product identifiers to product images.
//
// # Overview
//
// A [Fetcher] turns an identifier into a [ResolvedImage]:
//
//  1. look the identifier up in the [ImageCache] (memory, then the optional
//     persistent byte store)
//  2. on a miss, GET the product detail page
//  3. run the ordered [Extractor] list over the parsed HTML to collect
//     candidate image URLs
//  4. download and decode candidates in order, rejecting images whose
//     width and height are both below the minimum size
//  5. cache the first qualifying image
//
// Steps 2-4 are retried a bounded number of times with a fixed delay.
// Every failure is absorbed: [Fetcher.Fetch] reports absence with a false
// second return value and never returns an error.
//
// # Extractors
//
// An [Extractor] is a pure function over a parsed document. [DefaultExtractors]
// covers the common retail product page layouts; callers can supply their
// own list through [Config].
//
// # Formats
//
// JPEG, PNG, GIF, BMP, TIFF and WebP source images are decoded.
package catalog
