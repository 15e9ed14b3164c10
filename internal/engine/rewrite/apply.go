package rewrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/dscomply/dscomply/internal/engine/finding"
	"github.com/dscomply/dscomply/internal/logging"
)

const fileWriteFlags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC

// Sentinel causes for applyFile failures, so demoted results carry the
// reason that actually occurred.
var (
	errReadFile  = errors.New("read failed")
	errWriteFile = errors.New("write failed")
)

// Outcome summarises one apply pass.
type Outcome struct {
	FilesChanged int
	EditsApplied int
	Errors       []finding.FileError
}

// Apply commits the non-manual results to disk, one writer per file.
// Edits are spliced by descending start offset against the file content
// read once, then committed via write-to-temp-then-rename so an
// interrupted run never leaves a half-written file. A file whose
// content no longer matches the recorded original text is skipped
// whole, its results demoted, and the run continues. Cancellation is
// checked between files, never mid-write.
func Apply(ctx context.Context, fsys afero.Fs, results []finding.RewriteResult) (*Outcome, error) {
	logger := logging.Get(ctx)
	outcome := &Outcome{}

	byFile := make(map[string][]*finding.RewriteResult)
	for i := range results {
		r := &results[i]
		if r.RequiresManualReview {
			continue
		}
		byFile[r.Span.FilePath] = append(byFile[r.Span.FilePath], r)
	}

	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return outcome, ctx.Err()
		default:
		}

		edits := byFile[path]
		applied, err := applyFile(fsys, path, edits)
		if err != nil {
			outcome.Errors = append(outcome.Errors, finding.FileError{
				Path: path, Op: "rewrite", Err: err.Error(),
			})
			reason := demotionReason(err)
			for _, r := range edits {
				r.NewText = ""
				r.RequiresManualReview = true
				r.Reason = reason
			}
			logger.Warn().Str("file", path).Err(err).Msg("rewrite skipped")
			continue
		}

		outcome.FilesChanged++
		outcome.EditsApplied += applied
		logger.Info().Str("file", path).Int("edits", applied).Msg("rewrote file")
	}

	return outcome, nil
}

// demotionReason maps an applyFile failure onto the reason stored on
// the demoted results. Content drift is the default: an unreadable
// stale span and a truncated file both mean the scan no longer
// describes the file.
func demotionReason(err error) string {
	switch {
	case errors.Is(err, errReadFile):
		return ReasonReadFailed
	case errors.Is(err, errWriteFile):
		return ReasonWriteFailed
	default:
		return ReasonFileChanged
	}
}

// applyFile splices all edits for one file against a single immutable
// base buffer and re-serializes once.
func applyFile(fsys afero.Fs, path string, edits []*finding.RewriteResult) (int, error) {
	base, err := afero.ReadFile(fsys, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errReadFile, err)
	}

	// Descending start offset: earlier edits never shift later ones.
	sorted := append([]*finding.RewriteResult(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.StartOffset > sorted[j].Span.StartOffset
	})

	working := append([]byte(nil), base...)
	for _, r := range sorted {
		start, end := r.Span.StartOffset, r.Span.EndOffset
		if start < 0 || end < start || end > len(base) {
			return 0, fmt.Errorf("edit span [%d,%d) out of range", start, end)
		}
		if string(base[start:end]) != r.OriginalText {
			return 0, fmt.Errorf("content mismatch at offset %d", start)
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], []byte(r.NewText)...), suffix...)
	}

	if err := writeFileAtomic(fsys, path, working); err != nil {
		return 0, fmt.Errorf("%w: %s", errWriteFile, err)
	}
	return len(edits), nil
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it into place, fsyncing before the rename.
func writeFileAtomic(fsys afero.Fs, path string, data []byte) error {
	tmp := path + ".dscomply.tmp"

	f, err := fsys.OpenFile(tmp, fileWriteFlags, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}
