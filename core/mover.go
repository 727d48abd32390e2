package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// MoveCandidate is one planned move. CollisionSuffix is 0 when the original
// base name was free at the destination, and the chosen _k suffix otherwise.
type MoveCandidate struct {
	Source          string
	Dest            string
	CollisionSuffix int
}

// moveDateTags are consulted in order; the first value that looks like a
// date promotes the file to movable.
var moveDateTags = []string{
	"EXIF:DateTimeOriginal",
	"EXIF:CreateDate",
	"XMP:DateCreated",
}

// Move scans source for media files that already carry a trustworthy
// capture date, plans collision-free destinations for them under dest, and
// in execute mode performs the moves. Files under dest are never scanned.
func Move(ctx context.Context, logger hclog.Logger, factory MetadataFactory, source, dest string, opts RunOptions, out io.Writer) (*Counters, error) {
	source, err := filepath.Abs(source)
	if err != nil {
		return nil, err
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("input directory %q is not accessible: %w", source, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %q is not a directory", source)
	}

	files, err := collectMedia(logger, source, dest, IsMovable)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %q: %w", source, err)
	}

	jobs := opts.jobs()
	metas, err := openMetas(factory, jobs)
	if err != nil {
		return nil, err
	}
	defer closeMetas(logger, metas)

	progress := StartProgress(len(files), out)
	defer progress.Finish()

	// Date checks run in parallel but land in traversal order so the
	// later claim pass is deterministic.
	dated := make([]bool, len(files))
	work := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(meta Metadata) {
			defer wg.Done()
			for idx := range work {
				dated[idx] = hasCaptureDate(meta, files[idx])
				progress.Step()
			}
		}(metas[i])
	}

	cancelled := false
	for i := range files {
		select {
		case work <- i:
		case <-ctx.Done():
			cancelled = true
		}
		if cancelled {
			break
		}
	}
	close(work)
	wg.Wait()
	if cancelled {
		return progress.Counters, nil
	}

	planned := planMoves(files, dated, dest, progress.Counters)

	if opts.DryRun {
		return progress.Counters, nil
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination %q: %w", dest, err)
	}
	for _, cand := range planned {
		if ctx.Err() != nil {
			break
		}
		if err := moveFile(cand.Source, cand.Dest); err != nil {
			logger.Debug("move failed", "source", cand.Source, "dest", cand.Dest, "error", err)
			progress.Inc("move", "move-failed")
			continue
		}
		progress.Inc("move", "moved")
	}

	return progress.Counters, nil
}

// hasCaptureDate reports whether the file's metadata already carries a date
// we trust. PNG and AVI may fall back to the filesystem modification date;
// nothing else does.
func hasCaptureDate(meta Metadata, path string) bool {
	tags := moveDateTags
	if class := ClassifyExt(path); class == ClassPNG || class == ClassAVI {
		tags = append(append([]string{}, tags...), "FileModifyDate")
	}

	values := meta.ReadTags(path, tags)
	for _, tag := range tags {
		v := values[tag]
		if v != "" && v[0] >= '0' && v[0] <= '9' {
			return true
		}
	}
	return false
}

// planMoves assigns a destination to every dated file, single-threaded and
// in traversal order. The claim table keeps two sources with the same base
// name from colliding in flight, dry-run included.
func planMoves(files []string, dated []bool, dest string, counters *Counters) []MoveCandidate {
	claimed := make(map[string]struct{})
	var planned []MoveCandidate

	for i, src := range files {
		if !dated[i] {
			counters.Inc("move", "not-moved")
			continue
		}

		base := filepath.Base(src)
		first := filepath.Join(dest, base)
		occupied := pathExists(first)
		_, inflight := claimed[first]

		target := first
		suffix := 0
		if occupied || inflight {
			if occupied {
				counters.Inc("move", "duplicates")
			}
			ext := filepath.Ext(base)
			stem := strings.TrimSuffix(base, ext)
			for k := 1; ; k++ {
				cand := filepath.Join(dest, fmt.Sprintf("%s_%d%s", stem, k, ext))
				if _, taken := claimed[cand]; taken || pathExists(cand) {
					continue
				}
				target, suffix = cand, k
				break
			}
		}

		claimed[target] = struct{}{}
		counters.Inc("move", "movable")
		planned = append(planned, MoveCandidate{Source: src, Dest: target, CollisionSuffix: suffix})
	}
	return planned
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// moveFile renames src to dst, falling back to copy-then-delete when the
// rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile lands the content through a temp file plus rename so a partial
// copy never occupies the destination name.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".gphoto-tidy-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	// Keep the time from the source file.
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
