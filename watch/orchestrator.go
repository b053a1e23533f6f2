package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fwojciec/sidetoc"
)

var _ sidetoc.Session = (*Orchestrator)(nil)

// Orchestrator owns the topic list of one live page. It scans the page on
// start and on every relevant mutation, applies the active search filter,
// and hands every new list to Publish.
//
// Scans and publishes are serialized: a rescan runs to completion before the
// next one begins, whichever event triggered it.
type Orchestrator struct {
	Page     sidetoc.Page
	Scanner  sidetoc.Scanner
	Observer sidetoc.MutationObserver
	Revealer sidetoc.Revealer
	Publish  sidetoc.PublishFunc
	Config   sidetoc.Config

	// Logger receives capability-absence diagnostics. Optional.
	Logger *slog.Logger

	mu      sync.Mutex
	monitor *Monitor
	ctx     context.Context
	cancel  context.CancelFunc

	result    *sidetoc.ScanResult
	published []sidetoc.Topic
	term      string
}

// Start begins observing the page. It is a no-op after the first call.
//
// An observer that cannot be installed is logged and leaves the
// orchestrator without automatic rescans; Start still succeeds and the
// bootstrap scan still runs.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.Config.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	if o.monitor != nil {
		o.mu.Unlock()
		return nil
	}
	o.ctx, o.cancel = context.WithCancel(context.WithoutCancel(ctx))
	o.monitor = &Monitor{Observer: o.Observer, BootstrapDelay: o.Config.BootstrapDelay}
	monitor, runCtx := o.monitor, o.ctx
	o.mu.Unlock()

	host := o.Page.Host()
	err := monitor.Start(ctx, o.Scanner.RootSelectors(host), func() {
		_ = o.Rescan(runCtx)
	})
	if err != nil {
		o.logger().Warn("automatic rescans disabled", "host", host, "err", err)
		return nil
	}
	o.logger().Debug("observing page", "host", host, "root", monitor.Root())
	return nil
}

// Rescan reads the page, scans it and publishes the result. On failure the
// previous list stays in place and the error is logged and returned.
func (o *Orchestrator) Rescan(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	html, err := o.Page.HTML(ctx)
	if err != nil {
		o.logger().Warn("page read failed", "err", err)
		return err
	}
	host := o.Page.Host()
	result, err := o.Scanner.Scan(html, host)
	if err != nil {
		o.logger().Warn("scan failed", "host", host, "err", err)
		return err
	}

	o.result = result
	o.publish()
	return nil
}

// Search sets the search term and publishes the filtered list.
// A blank term clears the filter.
func (o *Orchestrator) Search(term string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.term = term
	o.publish()
}

// publish applies the search term to the latest scan and hands the list to
// Publish. Must be called with mu held.
func (o *Orchestrator) publish() {
	var topics []sidetoc.Topic
	if o.result != nil {
		topics = o.result.Topics
	}
	list, isSearchResult := sidetoc.FilterTopics(topics, o.term)
	o.published = list
	if o.Publish != nil {
		o.Publish(list, isSearchResult)
	}
}

// Topics returns the most recently published list.
func (o *Orchestrator) Topics() []sidetoc.Topic {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]sidetoc.Topic(nil), o.published...)
}

// Result returns the latest scan result, or nil before the first scan.
func (o *Orchestrator) Result() *sidetoc.ScanResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Reveal scrolls the topic's element into view and highlights it.
// Topics without an element, or whose element has gone, are a no-op.
func (o *Orchestrator) Reveal(ctx context.Context, topic sidetoc.Topic) error {
	if topic.Element.IsZero() {
		return nil
	}
	if o.Revealer == nil {
		return sidetoc.Errorf(sidetoc.EUNAVAILABLE, "page elements cannot be revealed")
	}
	return o.Revealer.Reveal(ctx, topic.Element)
}

// Stop releases the mutation subscription and cancels the bootstrap scan.
// Stop is safe to call multiple times.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	monitor, cancel := o.monitor, o.cancel
	o.mu.Unlock()

	if monitor == nil {
		return nil
	}
	err := monitor.Stop()
	cancel()
	return err
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
