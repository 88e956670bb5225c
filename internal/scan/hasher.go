package scan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pixdupe/internal/fingerprint"
)

// runHashers fans the paths on in out to numWorkers goroutines. Each
// worker fingerprints its file and inserts the record into ix; decode and
// hash failures become skip reports. A failure on one file never affects
// any other file — workers only return early on context cancellation.
//
// The returned errgroup's Wait unblocks once every worker has finished,
// which is the point after which ix.Groups() is safe to call.
func runHashers(ctx context.Context, numWorkers int, in <-chan FileInfo, ix *Index, progress *Progress, report ErrorReporter) *errgroup.Group {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			for fi := range in {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				fp, err := fingerprint.File(fi.Path)
				if err != nil {
					report(fi.Path, "hash", err.Error())
					continue
				}

				ix.Insert(ImageRecord{Path: fi.Path, Size: fi.Size, Fingerprint: fp})
				progress.Hashed.Add(1)
				progress.BytesRead.Add(fi.Size)
			}
			return nil
		})
	}
	return g
}
