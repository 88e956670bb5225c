package scan

import "sync/atomic"

// Progress holds live counters updated by the pipeline stages.
// All fields are atomic so they can be written from worker goroutines and
// read from the CLI's progress ticker without locks.
type Progress struct {
	FilesFound atomic.Int64 // candidate images discovered by the walker
	Hashed     atomic.Int64 // files successfully fingerprinted
	Skipped    atomic.Int64 // files skipped (walk or hash failure)
	BytesRead  atomic.Int64 // total size of fingerprinted files
}
