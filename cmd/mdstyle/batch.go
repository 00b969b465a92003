package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	mdstyle "github.com/alnah/go-mdstyle"
)

// Pool sizing bounds for auto-detected worker counts.
const (
	minWorkers = 1
	maxWorkers = 8
)

// stdinPath names the source read from standard input.
const stdinPath = "-"

// DocumentConverter is the interface for the conversion service.
type DocumentConverter interface {
	Convert(ctx context.Context, input mdstyle.Input) (*mdstyle.Document, error)
}

// Compile-time interface implementation check.
var _ DocumentConverter = (*mdstyle.Converter)(nil)

// source is one markdown input: a file path, or stdin with its content preloaded.
type source struct {
	Path    string
	Content []byte // non-nil when already read
}

// RenderResult holds the outcome of a single conversion.
type RenderResult struct {
	InputPath string
	Document  *mdstyle.Document
	Err       error
	Duration  time.Duration
}

// renderBatch converts sources concurrently. Results keep the order of sources.
func renderBatch(ctx context.Context, conv DocumentConverter, sources []source, workers int, maxWidth float64) []RenderResult {
	if len(sources) == 0 {
		return nil
	}

	concurrency := min(ResolvePoolSize(workers), len(sources))

	results := make([]RenderResult, len(sources))
	var wg sync.WaitGroup
	jobs := make(chan int, len(sources))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{
						InputPath: sources[idx].Path,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = renderSource(ctx, conv, sources[idx], maxWidth)
			}
		}()
	}

	for i := range sources {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderSource reads and converts a single source.
func renderSource(ctx context.Context, conv DocumentConverter, src source, maxWidth float64) RenderResult {
	start := time.Now()
	result := RenderResult{InputPath: src.Path}

	content := src.Content
	if content == nil {
		data, err := os.ReadFile(src.Path) // #nosec G304 -- user-provided path
		if err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
			result.Duration = time.Since(start)
			return result
		}
		content = data
	}

	doc, err := conv.Convert(ctx, mdstyle.Input{
		Markdown: string(content),
		MaxWidth: maxWidth,
	})
	result.Document = doc
	result.Err = err
	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []RenderResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// ResolvePoolSize determines the number of parallel conversions.
// If workers > 0, uses that value. Otherwise, uses GOMAXPROCS
// (adjusted by automaxprocs for containers) clamped to [1, 8].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return max(minWorkers, min(runtime.GOMAXPROCS(0), maxWorkers))
}
