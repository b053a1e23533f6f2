package mock

import (
	"context"

	"github.com/fwojciec/sidetoc"
)

var _ sidetoc.AnnotationService = (*AnnotationService)(nil)

// AnnotationService is a mock implementation of sidetoc.AnnotationService.
type AnnotationService struct {
	SetLabelFn        func(ctx context.Context, key, label string) error
	ToggleCheckedFn   func(ctx context.Context, key string) (bool, error)
	FindAnnotationFn  func(ctx context.Context, key string) (*sidetoc.Annotation, error)
	FindAnnotationsFn func(ctx context.Context, keys []string) (map[string]*sidetoc.Annotation, error)
}

func (s *AnnotationService) SetLabel(ctx context.Context, key, label string) error {
	return s.SetLabelFn(ctx, key, label)
}

func (s *AnnotationService) ToggleChecked(ctx context.Context, key string) (bool, error) {
	return s.ToggleCheckedFn(ctx, key)
}

func (s *AnnotationService) FindAnnotation(ctx context.Context, key string) (*sidetoc.Annotation, error) {
	return s.FindAnnotationFn(ctx, key)
}

func (s *AnnotationService) FindAnnotations(ctx context.Context, keys []string) (map[string]*sidetoc.Annotation, error) {
	return s.FindAnnotationsFn(ctx, keys)
}
