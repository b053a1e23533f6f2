package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/sidetoc"
)

// Ensure LoggingObserver implements sidetoc.MutationObserver.
var _ sidetoc.MutationObserver = (*LoggingObserver)(nil)

// LoggingObserver wraps a MutationObserver with logging of subscriptions
// and debug logging of every delivered batch.
type LoggingObserver struct {
	next   sidetoc.MutationObserver
	logger *slog.Logger
}

// NewLoggingObserver creates a new LoggingObserver.
func NewLoggingObserver(next sidetoc.MutationObserver, logger *slog.Logger) *LoggingObserver {
	return &LoggingObserver{next: next, logger: logger}
}

// Observe delegates to the wrapped observer. The handler is wrapped so that
// each batch is logged with its record and added node counts.
func (o *LoggingObserver) Observe(ctx context.Context, selectors []string, fn sidetoc.MutationHandler) (sidetoc.Subscription, error) {
	sub, err := o.next.Observe(ctx, selectors, func(batch []sidetoc.Mutation) {
		added := 0
		for _, m := range batch {
			added += m.Added
		}
		o.logger.Debug("mutations", "records", len(batch), "added", added)
		fn(batch)
	})
	if err != nil {
		o.logger.Warn("observe", "selectors", len(selectors), "err", err)
		return nil, err
	}
	o.logger.Info("observe", "root", sub.Root())
	return sub, nil
}
