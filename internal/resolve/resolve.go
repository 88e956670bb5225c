// Package resolve applies a resolution policy to duplicate groups: keep
// one survivor per group and either delete the rest or copy the survivor
// into a destination directory. All filesystem access goes through an
// afero.Fs so tests run against an in-memory filesystem.
package resolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"pixdupe/internal/scan"
)

// Action describes what Resolve did to a group's members.
type Action string

const (
	ActionDeleted Action = "deleted"
	ActionCopied  Action = "copied"
)

// PathError is a per-path failure captured during resolution.
type PathError struct {
	Path string
	Err  error
}

func (e PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Outcome records how a single duplicate group was resolved.
type Outcome struct {
	Survivor string
	Affected []string // paths deleted (delete mode) or written (keep mode)
	Action   Action
	Errors   []PathError
}

// Stats aggregates outcomes across groups.
type Stats struct {
	GroupsResolved int
	FilesDeleted   int
	FilesCopied    int
	BytesReclaimed int64
	Errors         int
}

// Resolver applies one policy to every duplicate group.
type Resolver struct {
	fs      afero.Fs
	keepDir string // empty → delete mode

	// Serializes destination-name selection in keep mode so two
	// concurrent resolutions cannot claim the same disambiguated name.
	destMu sync.Mutex
}

// NewDelete returns a Resolver that removes every non-survivor.
func NewDelete(fs afero.Fs) *Resolver {
	return &Resolver{fs: fs}
}

// NewKeep returns a Resolver that copies each group's survivor into
// keepDir and leaves the source tree untouched.
func NewKeep(fs afero.Fs, keepDir string) *Resolver {
	return &Resolver{fs: fs, keepDir: keepDir}
}

// ResolveAll resolves every group in order, stopping early only on
// context cancellation. Per-path failures are recorded in the outcomes
// and never stop the remaining groups.
func (r *Resolver) ResolveAll(ctx context.Context, groups []scan.DuplicateGroup) ([]Outcome, Stats, error) {
	outcomes := make([]Outcome, 0, len(groups))
	var stats Stats
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return outcomes, stats, err
		}
		out := r.Resolve(g)
		outcomes = append(outcomes, out)

		stats.GroupsResolved++
		stats.Errors += len(out.Errors)
		switch out.Action {
		case ActionDeleted:
			stats.FilesDeleted += len(out.Affected)
			for _, rec := range g.Records[1:] {
				stats.BytesReclaimed += rec.Size
			}
		case ActionCopied:
			stats.FilesCopied += len(out.Affected)
		}
	}
	return outcomes, stats, nil
}

// Resolve applies the policy to one group. The survivor is the first
// record after the group's path sort, so selection is reproducible
// regardless of how the scan's workers were scheduled.
func (r *Resolver) Resolve(group scan.DuplicateGroup) Outcome {
	if r.keepDir != "" {
		return r.keep(group)
	}
	return r.delete(group)
}

// delete removes every non-survivor. The survivor is never touched.
func (r *Resolver) delete(group scan.DuplicateGroup) Outcome {
	out := Outcome{Survivor: group.Survivor().Path, Action: ActionDeleted}
	for _, rec := range group.Records[1:] {
		if err := r.fs.Remove(rec.Path); err != nil {
			out.Errors = append(out.Errors, PathError{Path: rec.Path, Err: err})
			continue
		}
		out.Affected = append(out.Affected, rec.Path)
	}
	slog.Debug("group resolved",
		"fingerprint", group.Fingerprint.String(),
		"survivor", out.Survivor,
		"deleted", len(out.Affected),
		"errors", len(out.Errors))
	return out
}

// keep copies the survivor into the destination directory. Non-survivors
// are left in place — keep mode never deletes anything.
func (r *Resolver) keep(group scan.DuplicateGroup) Outcome {
	out := Outcome{Survivor: group.Survivor().Path, Action: ActionCopied}
	dst, err := r.copyToDest(out.Survivor)
	if err != nil {
		out.Errors = append(out.Errors, PathError{Path: out.Survivor, Err: err})
		return out
	}
	out.Affected = append(out.Affected, dst)
	slog.Debug("group resolved",
		"fingerprint", group.Fingerprint.String(),
		"survivor", out.Survivor,
		"copied_to", dst)
	return out
}

// copyToDest copies src into the destination directory under its own
// filename, disambiguating collisions, and returns the destination path.
func (r *Resolver) copyToDest(src string) (string, error) {
	in, err := r.fs.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	r.destMu.Lock()
	defer r.destMu.Unlock()

	dst, err := r.destPath(filepath.Base(src))
	if err != nil {
		return "", err
	}

	out, err := r.fs.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		r.fs.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		r.fs.Remove(dst)
		return "", err
	}
	return dst, nil
}

// destPath returns keepDir/name, or keepDir/name_N.ext for the smallest
// N ≥ 1 when the plain name is already taken. Callers must hold destMu.
func (r *Resolver) destPath(name string) (string, error) {
	candidate := filepath.Join(r.keepDir, name)
	exists, err := afero.Exists(r.fs, candidate)
	if err != nil {
		return "", err
	}
	if !exists {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for n := 1; ; n++ {
		candidate = filepath.Join(r.keepDir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		exists, err := afero.Exists(r.fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}
