package scan

import "pixdupe/internal/fingerprint"

// FileInfo is a candidate image emitted by the walker.
type FileInfo struct {
	Path string
	Size int64
}

// ImageRecord is a successfully fingerprinted file. Immutable once
// created; Path doubles as the order key for deterministic survivor
// selection (lexicographic, stable across runs and worker schedules).
type ImageRecord struct {
	Path        string
	Size        int64
	Fingerprint fingerprint.Fingerprint
}

// DuplicateGroup is two or more records sharing one fingerprint.
// Records are sorted by Path; Records[0] is the survivor.
type DuplicateGroup struct {
	Fingerprint fingerprint.Fingerprint
	Records     []ImageRecord
}

// Survivor returns the group member that resolution keeps.
func (g DuplicateGroup) Survivor() ImageRecord {
	return g.Records[0]
}

// Skip is a per-file notice for a path that could not be processed.
// Skips never abort the run; they are collected and reported.
type Skip struct {
	Path   string
	Stage  string // "walk" or "hash"
	Reason string
}

// ErrorReporter records a per-file error without stopping the pipeline.
type ErrorReporter func(path, stage, reason string)
