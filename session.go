package sidetoc

import "context"

// Session is the live topic list of one page.
type Session interface {
	// Result returns the latest scan result, or nil before the first scan.
	Result() *ScanResult

	// Search sets the search term applied to published lists.
	// A blank term clears the filter.
	Search(term string)

	// Rescan reads and scans the page immediately.
	Rescan(ctx context.Context) error

	// Reveal scrolls the topic's element into view and highlights it.
	Reveal(ctx context.Context, topic Topic) error
}
