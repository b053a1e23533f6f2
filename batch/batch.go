// Package batch scans many chat pages at once. Sources are saved HTML
// files or live URLs; URLs are loaded through a rendering fetcher with
// per-host rate limiting and retries.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sidetoc"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sources scanned in parallel when
// Runner.Concurrency is not set.
const DefaultConcurrency = 4

// Runner scans a list of sources concurrently.
type Runner struct {
	Scanner     sidetoc.Scanner
	Fetcher     sidetoc.Fetcher
	RateLimiter sidetoc.DomainLimiter
	Concurrency int
	RetryDelays []time.Duration

	// Host forces the adapter host for every source. When empty, URL
	// sources use their own host and files use HostHint.
	Host string

	// HostHint guesses the original host of a saved page, e.g. from its
	// canonical link. Optional.
	HostHint func(html string) string

	// ReadFile reads file sources. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	Logger *slog.Logger
}

// Result holds the outcome of scanning one source.
type Result struct {
	Source string
	Scan   *sidetoc.ScanResult
	Err    error
}

// ProgressEvent reports progress during a batch scan.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Source    string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// IsURL reports whether source names a web page rather than a file.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Run scans every source and returns one result per source, in input
// order. A failing source does not stop the others; its error is reported
// in its result. Progress callbacks are never invoked concurrently.
func (r *Runner) Run(ctx context.Context, sources []string, progress ProgressFunc) []Result {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(sources)
	resultCh := make(chan indexedResult, total)
	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, source := range sources {
			g.Go(func() error {
				resultCh <- indexedResult{position: i, Result: r.scan(gctx, source)}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]Result, total)
	for res := range resultCh {
		results[res.position] = res.Result
		n := int(completed.Add(1))
		if progress == nil {
			continue
		}
		event := ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, Source: res.Source}
		if res.Err != nil {
			event.Type = ProgressFailed
			event.Error = res.Err
		}
		progress(event)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}
	return results
}

type indexedResult struct {
	position int
	Result
}

// scan loads and scans a single source.
func (r *Runner) scan(ctx context.Context, source string) Result {
	result := Result{Source: source}

	html, host, err := r.Load(ctx, source)
	if err != nil {
		result.Err = err
		return result
	}
	if r.Host != "" {
		host = r.Host
	}

	scan, err := r.Scanner.Scan(html, host)
	if err != nil {
		result.Err = fmt.Errorf("scan %s: %w", source, err)
		return result
	}
	result.Scan = scan
	return result
}

// Load returns the HTML of source and the host it was served from. Files
// are read from disk; URLs go through the rate limiter and the fetcher
// with retries.
func (r *Runner) Load(ctx context.Context, source string) (html string, host string, err error) {
	if !IsURL(source) {
		readFile := r.ReadFile
		if readFile == nil {
			readFile = os.ReadFile
		}
		data, err := readFile(source)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", source, err)
		}
		html = string(data)
		if r.HostHint != nil {
			host = r.HostHint(html)
		}
		return html, host, nil
	}

	if r.Fetcher == nil {
		return "", "", sidetoc.Errorf(sidetoc.EINVALID, "cannot load %s: no browser available", source)
	}
	u, _ := url.Parse(source)
	host = strings.ToLower(u.Hostname())

	if r.RateLimiter != nil {
		if err := r.RateLimiter.Wait(ctx, host); err != nil {
			return "", "", err
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err = FetchWithRetry(ctx, source, r.Fetcher.Fetch, r.Logger, delays)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", source, err)
	}
	return html, host, nil
}
