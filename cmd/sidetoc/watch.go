package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/sidetoc"
	tochttp "github.com/fwojciec/sidetoc/http"
	tocslog "github.com/fwojciec/sidetoc/slog"
	"github.com/fwojciec/sidetoc/watch"
	"golang.org/x/sync/errgroup"
)

// Run executes the watch command. It prints the outline every time the
// published list changes and runs until interrupted.
func (c *WatchCmd) Run(deps *Dependencies) error {
	view, err := sidetoc.ParseView(c.View)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, err := deps.OpenPage(ctx, c.URL)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.URL, err)
	}
	defer page.Close()

	printer := &outlinePrinter{deps: deps, view: view, last: watch.Fingerprint(nil)}
	orch := &watch.Orchestrator{
		Page:     page,
		Scanner:  deps.Scanner,
		Observer: tocslog.NewLoggingObserver(page, deps.Logger),
		Revealer: page,
		Publish:  printer.publish,
		Config:   deps.Config,
		Logger:   deps.Logger,
	}
	if err := orch.Start(ctx); err != nil {
		return err
	}
	defer orch.Stop()
	if c.Search != "" {
		orch.Search(c.Search)
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.Serve != "" {
		l, err := net.Listen("tcp", c.Serve)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", c.Serve, err)
		}
		fmt.Fprintf(deps.Stderr, "Serving topics on http://%s/topics\n", l.Addr())
		server := tochttp.NewServer(orch, deps.Annotations, deps.Logger)
		g.Go(func() error {
			return server.Serve(gctx, l)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

// outlinePrinter prints published lists whose content differs from the
// last one printed. The orchestrator never calls publish concurrently.
type outlinePrinter struct {
	deps *Dependencies
	view sidetoc.View
	last uint64
}

func (p *outlinePrinter) publish(topics []sidetoc.Topic, isSearchResult bool) {
	topics = sidetoc.FilterView(topics, p.view)
	fp := watch.Fingerprint(topics)
	if fp == p.last {
		return
	}
	p.last = fp

	annotations, err := findAnnotations(p.deps, topics)
	if err != nil {
		p.deps.Logger.Warn("annotations unavailable", "err", err)
	}

	header := fmt.Sprintf("--- %d topics", len(topics))
	if isSearchResult {
		header += " (search results)"
	}
	fmt.Fprintln(p.deps.Stdout, header)
	fmt.Fprint(p.deps.Stdout, sidetoc.FormatOutline(topics, p.view, customLabels(annotations)))
}
