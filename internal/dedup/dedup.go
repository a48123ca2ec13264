// Package dedup persists the set of source URLs already crawled so that
// repeated category runs stay incremental. A URL is recorded only after a
// successful end-to-end submission; failed items stay eligible for the next
// run.
package dedup

import "context"

type Store interface {
	// Load reads the full membership set once per run. A missing backing
	// store is an empty set, not an error.
	Load(ctx context.Context) error

	Contains(url string) bool

	// Record appends a single URL. Callers must only invoke it after the
	// fetch, extract and submit stages all succeeded for that URL.
	Record(ctx context.Context, url string) error

	Close() error
}
