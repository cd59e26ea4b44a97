// Package httputil provides HTTP retry utilities shared by the catalog
// fetcher and the ledger backends.
//
// # Retry
//
// [Retry] wraps an operation with bounded retries for transient failures.
// Only errors wrapped with [RetryableError] are retried:
//
//   - Network errors
//   - 5xx server errors and 429 responses
//   - catalog pages that yielded no usable image
//
// The catalog fetcher uses a fixed delay between attempts:
//
//	err := httputil.Retry(ctx, httputil.FixedPolicy(3, 1500*time.Millisecond), func(attempt int) error {
//	    return fetchOnce(ctx, attempt)
//	})
//
// No delay is inserted after the final attempt unless
// [Policy.DelayAfterLast] is set.
package httputil
