// Package watch keeps a topic list in sync with a live page. A Monitor turns
// DOM mutations into rescans and an Orchestrator owns the scan, search and
// publish cycle for one page.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/sidetoc"
)

// Relevant reports whether a mutation batch should trigger a rescan:
// some record must be a child-list record that added at least one node.
// Attribute and character-data changes never qualify.
func Relevant(batch []sidetoc.Mutation) bool {
	for _, m := range batch {
		if m.Type == sidetoc.MutationChildList && m.Added > 0 {
			return true
		}
	}
	return false
}

type monitorState int

const (
	stateIdle monitorState = iota
	stateObserving
	stateStopped
)

// Monitor subscribes to page mutations and calls a rescan function for every
// relevant batch, plus once after BootstrapDelay. A Monitor is started at
// most once; Stop releases the subscription and cancels a pending
// bootstrap.
type Monitor struct {
	Observer       sidetoc.MutationObserver
	BootstrapDelay time.Duration

	mu    sync.Mutex
	state monitorState
	sub   sidetoc.Subscription
	timer *time.Timer
}

// Start subscribes to mutations under the first element matching selectors
// and schedules the bootstrap rescan. Calls after the first are no-ops.
//
// When the page cannot be observed the error is returned, but the bootstrap
// rescan is still scheduled so the topic list gets populated once.
func (m *Monitor) Start(ctx context.Context, selectors []string, rescan func()) error {
	m.mu.Lock()
	if m.state != stateIdle {
		m.mu.Unlock()
		return nil
	}
	m.state = stateObserving
	m.timer = time.AfterFunc(m.BootstrapDelay, func() {
		if m.observing() {
			rescan()
		}
	})
	m.mu.Unlock()

	if m.Observer == nil {
		return sidetoc.Errorf(sidetoc.EUNAVAILABLE, "page cannot be observed")
	}

	// The handler may fire before Observe returns, so mu must not be held here.
	sub, err := m.Observer.Observe(ctx, selectors, func(batch []sidetoc.Mutation) {
		if Relevant(batch) && m.observing() {
			rescan()
		}
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == stateStopped {
		return sub.Close()
	}
	m.sub = sub
	return nil
}

// Root returns the selector of the observed element, or "" when nothing is
// being observed.
func (m *Monitor) Root() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sub == nil {
		return ""
	}
	return m.sub.Root()
}

// Stop cancels the bootstrap rescan and releases the subscription.
// Stop is safe to call multiple times and before Start.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if m.state == stateStopped {
		m.mu.Unlock()
		return nil
	}
	m.state = stateStopped
	if m.timer != nil {
		m.timer.Stop()
	}
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	// Closing may wait on an in-flight handler, which takes mu.
	if sub == nil {
		return nil
	}
	return sub.Close()
}

func (m *Monitor) observing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == stateObserving
}
