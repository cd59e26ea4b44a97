// Package integrations provides HTTP clients for the remote services the
// composer talks to.
//
// # Overview
//
//   - [Client]: shared GET client used for catalog detail pages and image
//     bytes (default headers, status mapping, 10s timeout, observability)
//   - [github]: GitHub contents API, used as the usage ledger's storage
//
// # Status Mapping
//
// [Client] maps responses to errors consistently:
//
//   - 200: success
//   - 404: [ErrNotFound]
//   - 429 and 5xx: [ErrNetwork] wrapped in [httputil.RetryableError]
//   - anything else: [ErrNetwork]
//
// Every non-200 error carries a [StatusError]; use [StatusCode] to read it.
//
// [github]: github.com/matzehuels/promocanvas/pkg/integrations/github
package integrations
