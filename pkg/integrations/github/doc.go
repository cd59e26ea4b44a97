// Package github provides a minimal client for the GitHub contents API.
//
// # Overview
//
// The usage ledger can be stored as a single CSV file in a GitHub
// repository. This package reads that file together with its blob SHA and
// writes it back conditionally on the SHA, giving the ledger optimistic
// concurrency without a database.
//
// # Usage
//
//	repo, err := github.ParseRepository("acme/promo-ledger")
//	if err != nil {
//	    return err
//	}
//	client := github.NewContentClient(token, "")
//
//	file, err := client.GetFile(ctx, repo, "ledger.csv")
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // create with an empty sha
//	}
//	sha, err := client.PutFile(ctx, repo, "ledger.csv", data, file.SHA, "append record")
//	if errors.Is(err, github.ErrConflict) {
//	    // someone else wrote first: re-read and retry
//	}
//
// # Authentication
//
// Writes require a token with contents write permission on the repository.
package github
