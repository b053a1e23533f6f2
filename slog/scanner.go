package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/sidetoc"
)

// Ensure LoggingScanner implements sidetoc.Scanner.
var _ sidetoc.Scanner = (*LoggingScanner)(nil)

// LoggingScanner wraps a Scanner with debug logging of every scan.
type LoggingScanner struct {
	next   sidetoc.Scanner
	logger *slog.Logger
}

// NewLoggingScanner creates a new LoggingScanner.
func NewLoggingScanner(next sidetoc.Scanner, logger *slog.Logger) *LoggingScanner {
	return &LoggingScanner{next: next, logger: logger}
}

// Scan delegates to the wrapped scanner and logs the adapter used, the
// topic counts and the duration.
func (s *LoggingScanner) Scan(html string, host string) (result *sidetoc.ScanResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"host", host,
			"duration", time.Since(begin),
		}
		if result != nil {
			headings, messages := 0, 0
			for _, t := range result.Topics {
				if t.Kind == sidetoc.KindHeading {
					headings++
				} else {
					messages++
				}
			}
			attrs = append(attrs,
				"adapter", result.Adapter,
				"headings", headings,
				"messages", messages,
				"fallback", result.HeadingFallback,
			)
		}
		if err != nil {
			s.logger.Warn("scan", append(attrs, "err", err)...)
			return
		}
		s.logger.Debug("scan", attrs...)
	}(time.Now())
	return s.next.Scan(html, host)
}

// RootSelectors delegates to the wrapped scanner.
func (s *LoggingScanner) RootSelectors(host string) []string {
	return s.next.RootSelectors(host)
}
