// Package ingest parses uploaded campaign files into normalized tables.
package ingest

import "time"

// DefaultChunkSize is the number of data rows normalized per chunk.
const DefaultChunkSize = 100_000

// DefaultMaxBytes is the upload size limit enforced by CheckSize callers.
const DefaultMaxBytes int64 = 500 * 1024 * 1024

// Option configures a Load call.
type Option func(*loader)

// WithChunkSize sets how many rows are buffered before normalization.
func WithChunkSize(n int) Option {
	return func(l *loader) {
		if n > 0 {
			l.chunkSize = n
		}
	}
}

// WithLocation sets the time zone for timestamps that carry none.
func WithLocation(loc *time.Location) Option {
	return func(l *loader) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithSheet selects a spreadsheet sheet by name. The first sheet is used
// otherwise.
func WithSheet(name string) Option {
	return func(l *loader) {
		l.sheet = name
	}
}

// WithChunkHook registers a callback invoked after each chunk with the
// number of rows normalized so far.
func WithChunkHook(fn func(rows int)) Option {
	return func(l *loader) {
		l.onChunk = fn
	}
}
