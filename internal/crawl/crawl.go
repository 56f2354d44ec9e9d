// Package crawl implements the parallel crawl stage (C3): a worker pool
// drives per-file extraction (C2) while a single reducer goroutine merges
// every worker's result into the shared SeriesMetaMap and SopSeriesMap,
// avoiding a mutex around either map. The pattern is carried over from this
// engine's own directory-parsing code: bounded job channel, fixed worker
// count, one consumer draining a results channel.
package crawl

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/codeninja55/dcmgraph/internal/extract"
	"github.com/codeninja55/dcmgraph/internal/model"
)

// Options configures the crawl's concurrency and path handling.
type Options struct {
	// Workers is the number of concurrent extraction goroutines. Defaults
	// to runtime.GOMAXPROCS(0) when <= 0.
	Workers int
	// Root is the directory the file list was located under (DicomDir).
	// Folder/Instances are computed relative to Root's parent, so a
	// series directory's path keeps Root's own basename as its first
	// component.
	Root string
}

// Result is the outcome of crawling a set of files.
type Result struct {
	Meta      model.SeriesMetaMap
	SopSeries model.SopSeriesMap
	// Failed maps file path to the extraction error for files that could
	// not be indexed at all; a tolerant crawl never aborts on these.
	Failed map[string]error
}

type fileResult struct {
	path string
	rec  *model.SeriesRecord
	sop  model.SopUID
	err  error
}

// Files crawls every path in files, extracting metadata concurrently and
// merging results into a single Result. ctx cancellation stops dispatching
// new work to workers but lets in-flight extractions finish.
func Files(ctx context.Context, files []string, opts Options) *Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan string, len(files))
	results := make(chan fileResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, jobs, results)
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Located paths are absolute, so Root must be too for filepath.Rel to
	// succeed.
	root := opts.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return reduce(results, filepath.Dir(root))
}

func worker(ctx context.Context, jobs <-chan string, results chan<- fileResult) {
	for p := range jobs {
		select {
		case <-ctx.Done():
			results <- fileResult{path: p, err: ctx.Err()}
			continue
		default:
		}

		rec, sop, err := extract.File(p)
		results <- fileResult{path: p, rec: rec, sop: sop, err: err}
	}
}

// reduce is the single goroutine allowed to mutate the shared maps,
// removing the need for any lock around SeriesMetaMap/SopSeriesMap. relTo
// is the directory every file path is made relative to (the crawl root's
// parent), mirroring top.parent in the original crawl.
func reduce(results <-chan fileResult, relTo string) *Result {
	out := &Result{
		Meta:      make(model.SeriesMetaMap),
		SopSeries: make(model.SopSeriesMap),
		Failed:    make(map[string]error),
	}

	for r := range results {
		if r.err != nil {
			out.Failed[r.path] = fmt.Errorf("crawl: %s: %w", r.path, r.err)
			continue
		}

		rel, err := filepath.Rel(relTo, r.path)
		if err != nil {
			rel = r.path
		}
		rel = filepath.ToSlash(rel)

		rec, ok := out.Meta.Get(r.rec.SeriesInstanceUID, r.rec.SubSeries)
		if !ok {
			rec = r.rec
			rec.Folder = path.Dir(rel)
			out.Meta.Put(r.rec.SeriesInstanceUID, r.rec.SubSeries, rec)
		}
		rec.Instances[r.sop] = path.Base(rel)
		out.SopSeries[r.sop] = r.rec.SeriesInstanceUID
	}

	return out
}
