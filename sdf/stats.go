package sdf

// ReadStats holds reader counters. The reader is single-cursor by design,
// so the counters are plain fields; Stats() hands out copies.
type ReadStats struct {
	// Records is the number of successfully converted records.
	Records int64
	// Errors is the number of records surfaced as ParseError.
	Errors int64
	// SkippedLines counts lines discarded while recovering from a
	// malformed record.
	SkippedLines int64
	// BytesRead is the raw byte count consumed from the source.
	BytesRead int64
}
