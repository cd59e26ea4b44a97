// Package ledger records which identifiers were composed, as an append-only
// usage log with optimistic concurrency.
//
// # Model
//
// A ledger is an ordered list of [Record] values stored as one unit by a
// [Store]. Every read returns an opaque version token; a write must present
// the token of the read it is based on, and the store rejects it with
// [ErrConflict] if the ledger changed in between. A missing ledger reads as
// [ErrNotFound] and is started with [Store.Create].
//
// [Ledger.Append] performs one read-modify-write. [Ledger.AppendWithRetry]
// re-reads and retries on conflict.
//
// # Backends
//
//   - [MemoryStore]: in process, for tests
//   - [FileStore]: a local CSV file; the version is the SHA-256 of its bytes
//   - [github.Store]: a CSV file in a GitHub repository; the version is the
//     blob SHA
//   - [mongo.Store]: one MongoDB document with an integer version
//
// CSV backends share the format produced by [MarshalCSV].
//
// [github.Store]: github.com/matzehuels/promocanvas/pkg/ledger/github
// [mongo.Store]: github.com/matzehuels/promocanvas/pkg/ledger/mongo
package ledger
