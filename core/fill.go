package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// RunOptions are shared by the fill and move runs.
type RunOptions struct {
	// DryRun makes decisions without mutating anything. The commands set it
	// unless --execute is given.
	DryRun bool
	// Jobs is the worker pool width; zero means one worker per logical CPU.
	Jobs int
}

func (o RunOptions) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.NumCPU()
}

// Fill walks root, resolves a capture date for every media file, and stamps
// it into the file's metadata. Returns the outcome counters for the run.
func Fill(ctx context.Context, logger hclog.Logger, factory MetadataFactory, root string, opts RunOptions, out io.Writer) (*Counters, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input directory %q is not accessible: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %q is not a directory", root)
	}

	files, err := collectMedia(logger, root, "", IsMedia)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %q: %w", root, err)
	}

	jobs := opts.jobs()
	metas, err := openMetas(factory, jobs)
	if err != nil {
		return nil, err
	}
	defer closeMetas(logger, metas)

	progress := StartProgress(len(files), out)
	defer progress.Finish()

	work := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(meta Metadata) {
			defer wg.Done()
			resolver := &Resolver{Root: root, Logger: logger, Counters: progress.Counters}
			writer := &Writer{Meta: meta, DryRun: opts.DryRun, Logger: logger}
			for path := range work {
				fillOne(resolver, writer, progress, path)
			}
		}(metas[i])
	}

	for _, path := range files {
		select {
		case work <- path:
		case <-ctx.Done():
			// Stop handing out items; workers drain what is in flight.
			close(work)
			wg.Wait()
			return progress.Counters, nil
		}
	}
	close(work)
	wg.Wait()

	return progress.Counters, nil
}

func fillOne(resolver *Resolver, writer *Writer, progress *Progress, path string) {
	defer progress.Step()

	resolved, ok := resolver.Resolve(path)
	if !ok {
		progress.Inc("fill", OutcomeNoDateSource)
		return
	}

	outcome := writer.Apply(path, Classify(path), resolved.Time)
	progress.Inc("fill", outcome)
	if outcome == OutcomeWritten {
		progress.Inc("source", resolved.Provenance.String())
	}
}

// openMetas builds one private tool handle per worker up front so a missing
// tool is a fatal error before any file is touched.
func openMetas(factory MetadataFactory, n int) ([]Metadata, error) {
	metas := make([]Metadata, 0, n)
	for i := 0; i < n; i++ {
		m, err := factory()
		if err != nil {
			for _, open := range metas {
				open.Close()
			}
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, nil
}

func closeMetas(logger hclog.Logger, metas []Metadata) {
	for _, m := range metas {
		if err := m.Close(); err != nil {
			logger.Debug("failed to close metadata tool", "error", err)
		}
	}
}
