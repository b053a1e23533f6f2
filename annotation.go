package sidetoc

import (
	"context"
	"time"
)

// Annotation holds user state attached to a topic's stable key.
type Annotation struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Label     string    `json:"label,omitempty"`
	Checked   bool      `json:"checked"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AnnotationService persists custom labels and study-mode check state.
type AnnotationService interface {
	// SetLabel stores a custom label for key. A blank label removes it.
	SetLabel(ctx context.Context, key, label string) error

	// ToggleChecked flips the checked state for key and returns the new state.
	ToggleChecked(ctx context.Context, key string) (bool, error)

	// FindAnnotation retrieves the annotation for key.
	// Returns ENOTFOUND if the key has no annotation.
	FindAnnotation(ctx context.Context, key string) (*Annotation, error)

	// FindAnnotations retrieves annotations for the given keys, indexed by key.
	// Keys without annotations are absent from the map.
	FindAnnotations(ctx context.Context, keys []string) (map[string]*Annotation, error)
}
