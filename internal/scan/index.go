package scan

import (
	"sort"
	"sync"

	"pixdupe/internal/fingerprint"
)

// indexShards is the number of independently locked map shards. A power
// of two so the shard pick is a mask. 64 keeps contention negligible even
// with many hashers while the per-shard maps stay small.
const indexShards = 64

// Index is the concurrent fingerprint → records mapping at the center of
// the scan phase. Insertions to different fingerprints land on (usually)
// different shards and never contend; insertions to the same fingerprint
// serialize on one shard mutex, so concurrent inserts of a shared
// fingerprint both end up in the bucket and an insert is never visible
// half-applied. Records are only ever added during a scan.
type Index struct {
	shards [indexShards]indexShard
}

type indexShard struct {
	mu      sync.Mutex
	buckets map[fingerprint.Fingerprint][]ImageRecord
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	ix := &Index{}
	for i := range ix.shards {
		ix.shards[i].buckets = make(map[fingerprint.Fingerprint][]ImageRecord)
	}
	return ix
}

// Insert adds rec to its fingerprint's bucket. Safe for any number of
// concurrent callers.
func (ix *Index) Insert(rec ImageRecord) {
	s := &ix.shards[uint64(rec.Fingerprint)&(indexShards-1)]
	s.mu.Lock()
	s.buckets[rec.Fingerprint] = append(s.buckets[rec.Fingerprint], rec)
	s.mu.Unlock()
}

// Len returns the total number of inserted records.
func (ix *Index) Len() int {
	n := 0
	for i := range ix.shards {
		s := &ix.shards[i]
		s.mu.Lock()
		for _, b := range s.buckets {
			n += len(b)
		}
		s.mu.Unlock()
	}
	return n
}

// Groups returns every bucket holding two or more records. Buckets of
// size one are not duplicates and are discarded. Records within a group
// are sorted by path and groups are sorted by fingerprint, so the output
// is identical regardless of insertion order or worker count.
//
// Groups must only be called after all Insert calls have completed.
func (ix *Index) Groups() []DuplicateGroup {
	var groups []DuplicateGroup
	for i := range ix.shards {
		s := &ix.shards[i]
		s.mu.Lock()
		for fp, recs := range s.buckets {
			if len(recs) < 2 {
				continue
			}
			sort.Slice(recs, func(a, b int) bool { return recs[a].Path < recs[b].Path })
			groups = append(groups, DuplicateGroup{Fingerprint: fp, Records: recs})
		}
		s.mu.Unlock()
	}
	sort.Slice(groups, func(a, b int) bool {
		return groups[a].Fingerprint < groups[b].Fingerprint
	})
	return groups
}
