// Package scan discovers candidate images under a root directory,
// fingerprints them with a bounded worker pool, and groups files whose
// fingerprints collide.
package scan

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Scanner runs the discovery and fingerprinting phases.
type Scanner struct {
	root    string
	threads int

	progress *Progress

	mu    sync.Mutex
	skips []Skip
}

// Result is everything a completed scan produced.
type Result struct {
	FilesScanned int
	BytesScanned int64
	Groups       []DuplicateGroup
	Skips        []Skip
}

// New creates a Scanner for root using threads hasher workers.
func New(root string, threads int) *Scanner {
	return &Scanner{root: root, threads: threads}
}

// Run executes the scan: enumerate candidate images, fan them out to the
// hasher pool, and drain the duplicate index. progress may be polled
// concurrently while Run executes. Run returns ctx.Err() if cancelled;
// per-file failures never fail the run, they land in Result.Skips.
//
// Run is single-use: create a fresh Scanner per run.
func (s *Scanner) Run(ctx context.Context, progress *Progress) (*Result, error) {
	s.progress = progress

	files, err := s.enumerate(ctx, progress)
	if err != nil {
		return nil, err
	}
	slog.Info("enumeration complete", "root", s.root, "candidates", len(files))

	ix := NewIndex()

	in := make(chan FileInfo, 256)
	go func() {
		defer close(in)
		for _, fi := range files {
			select {
			case <-ctx.Done():
				return
			case in <- fi:
			}
		}
	}()

	g := runHashers(ctx, s.threads, in, ix, progress, s.reportSkip)
	if err := g.Wait(); err != nil {
		// Cancellation: drain the feeder so its goroutine exits.
		for range in {
		}
		return nil, err
	}

	res := &Result{
		FilesScanned: int(progress.Hashed.Load()),
		BytesScanned: progress.BytesRead.Load(),
		Groups:       ix.Groups(),
		Skips:        s.takeSkips(),
	}
	slog.Info("scan complete",
		"files_scanned", res.FilesScanned,
		"duplicate_groups", len(res.Groups),
		"skipped", len(res.Skips))
	return res, nil
}

// enumerate collects every candidate image under the root. The list is
// sorted by path so downstream behavior is independent of traversal
// order.
func (s *Scanner) enumerate(ctx context.Context, progress *Progress) ([]FileInfo, error) {
	out := make(chan FileInfo, 256)
	go Walk(ctx, s.root, out, s.reportSkip)

	var files []FileInfo
	for fi := range out {
		files = append(files, fi)
		progress.FilesFound.Add(1)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(files, func(a, b int) bool { return files[a].Path < files[b].Path })
	return files, nil
}

// reportSkip records a per-file failure. Called from walker and hasher
// goroutines concurrently.
func (s *Scanner) reportSkip(path, stage, reason string) {
	slog.Warn("skipping file", "path", path, "stage", stage, "reason", reason)
	if s.progress != nil {
		s.progress.Skipped.Add(1)
	}
	s.mu.Lock()
	s.skips = append(s.skips, Skip{Path: path, Stage: stage, Reason: reason})
	s.mu.Unlock()
}

// takeSkips returns the collected skips sorted by path.
func (s *Scanner) takeSkips() []Skip {
	s.mu.Lock()
	defer s.mu.Unlock()
	skips := s.skips
	sort.Slice(skips, func(a, b int) bool { return skips[a].Path < skips[b].Path })
	return skips
}
