// Package batch processes directories of ledger photographs through the
// workflow with a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/petropage/ledgerocr/internal/utils"
	"github.com/petropage/ledgerocr/internal/workflow"
)

// Options controls a batch run.
type Options struct {
	// Workers caps concurrent pages; 0 uses the CPU count.
	Workers int

	// Recursive descends into subdirectories.
	Recursive bool

	// ContinueOnError keeps the batch going past failed pages.
	ContinueOnError bool
}

// PageOutcome pairs an input file with its processing result.
type PageOutcome struct {
	Path     string           `json:"path"`
	Result   *workflow.Result `json:"result,omitempty"`
	Err      string           `json:"error,omitempty"`
	Duration time.Duration    `json:"duration"`
}

// Summary is the aggregate outcome of a batch run.
type Summary struct {
	Outcomes     []PageOutcome `json:"outcomes"`
	Processed    int           `json:"processed"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	TotalEntries int           `json:"total_entries"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Processor fans page images out to workflow workers.
type Processor struct {
	orch   *workflow.Orchestrator
	opts   Options
	logger *slog.Logger
}

// NewProcessor builds a Processor. A nil logger falls back to slog.Default.
func NewProcessor(orch *workflow.Orchestrator, opts Options, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{orch: orch, opts: opts, logger: logger}
}

// DiscoverImages lists supported image files in dir, sorted by path.
func DiscoverImages(dir string, recursive bool) ([]string, error) {
	var paths []string
	walk := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if utils.IsSupportedImage(path) {
			paths = append(paths, path)
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, fmt.Errorf("discover images in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes every discovered image in dir and returns the summary.
// Outcomes keep the discovery order regardless of completion order.
func (p *Processor) Run(ctx context.Context, dir string) (*Summary, error) {
	paths, err := DiscoverImages(dir, p.opts.Recursive)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return &Summary{}, nil
	}
	return p.RunFiles(ctx, paths)
}

// RunFiles processes the given image files through the worker pool.
func (p *Processor) RunFiles(ctx context.Context, paths []string) (*Summary, error) {
	workers := p.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	outcomes := make([]PageOutcome, len(paths))
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcome := p.processOne(ctx, j.path)
				outcomes[j.index] = outcome
				if outcome.Err != "" && !p.opts.ContinueOnError {
					cancel()
					return
				}
			}
		}()
	}

	p.logger.Info("batch started", "pages", len(paths), "workers", workers)

feed:
	for i, path := range paths {
		select {
		case jobs <- job{index: i, path: path}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{Elapsed: time.Since(start)}
	for _, o := range outcomes {
		if o.Path == "" {
			continue
		}
		summary.Outcomes = append(summary.Outcomes, o)
		summary.Processed++
		if o.Err == "" && o.Result != nil && o.Result.Success {
			summary.Succeeded++
			summary.TotalEntries += len(o.Result.Entries)
		} else {
			summary.Failed++
		}
	}

	p.logger.Info("batch finished",
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"entries", summary.TotalEntries,
		"elapsed", summary.Elapsed.String())

	if err := ctx.Err(); err != nil && !p.opts.ContinueOnError {
		return summary, fmt.Errorf("batch aborted: %w", context.Cause(ctx))
	}
	return summary, nil
}

func (p *Processor) processOne(ctx context.Context, path string) PageOutcome {
	start := time.Now()
	outcome := PageOutcome{Path: path}

	res, err := p.orch.ProcessImage(ctx, path)
	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Err = err.Error()
		p.logger.Error("page failed", "path", path, "error", err)
		return outcome
	}
	outcome.Result = res
	if !res.Success {
		outcome.Err = res.Message
	}
	return outcome
}
