package sidetoc

import "context"

// Page is read access to a rendered page.
type Page interface {
	// Host returns the current host of the page. It is re-read on every
	// scan because single-page apps navigate without reloading.
	Host() string

	// HTML returns the current rendered HTML of the page.
	HTML(ctx context.Context) (string, error)
}

// MutationType is the kind of a DOM mutation record.
type MutationType string

// Mutation record types.
const (
	MutationChildList     MutationType = "childList"
	MutationAttributes    MutationType = "attributes"
	MutationCharacterData MutationType = "characterData"
)

// Mutation summarizes one DOM mutation record.
type Mutation struct {
	Type    MutationType `json:"type"`
	Added   int          `json:"added"`
	Removed int          `json:"removed"`
}

// MutationHandler receives a batch of mutation records. Batches are
// delivered one at a time, never concurrently.
type MutationHandler func(batch []Mutation)

// MutationObserver subscribes to subtree mutations on a page.
type MutationObserver interface {
	// Observe watches the subtree of the first element matching one of
	// selectors, in order, falling back to the document body.
	// Returns EUNAVAILABLE when the page cannot be observed.
	Observe(ctx context.Context, selectors []string, fn MutationHandler) (Subscription, error)
}

// Subscription is an active mutation subscription.
type Subscription interface {
	// Root returns the selector of the element being observed,
	// or "body" when no selector matched.
	Root() string

	// Close releases the subscription. Close is safe to call multiple times.
	Close() error
}

// RevealClass is the CSS class added to an element while it is highlighted.
const RevealClass = "side-indexer-highlight"

// Revealer scrolls page elements into view and highlights them.
type Revealer interface {
	// Reveal scrolls the referenced element into view and adds a transient
	// highlight. A ref to an element that no longer exists is a no-op.
	Reveal(ctx context.Context, ref ElementRef) error
}

// PublishFunc receives every new topic list. isSearchResult is true when
// the list is the output of a search filter rather than a scan.
type PublishFunc func(topics []Topic, isSearchResult bool)
