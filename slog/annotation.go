package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/sidetoc"
)

// Ensure LoggingAnnotationService implements sidetoc.AnnotationService.
var _ sidetoc.AnnotationService = (*LoggingAnnotationService)(nil)

// LoggingAnnotationService wraps an AnnotationService with logging of writes.
// Reads are delegated without logging.
type LoggingAnnotationService struct {
	next   sidetoc.AnnotationService
	logger *slog.Logger
}

// NewLoggingAnnotationService creates a new LoggingAnnotationService.
func NewLoggingAnnotationService(next sidetoc.AnnotationService, logger *slog.Logger) *LoggingAnnotationService {
	return &LoggingAnnotationService{next: next, logger: logger}
}

func (s *LoggingAnnotationService) SetLabel(ctx context.Context, key, label string) (err error) {
	defer func() {
		s.logger.Info("set label", "key", key, "cleared", label == "", "err", err)
	}()
	return s.next.SetLabel(ctx, key, label)
}

func (s *LoggingAnnotationService) ToggleChecked(ctx context.Context, key string) (checked bool, err error) {
	defer func() {
		s.logger.Info("toggle checked", "key", key, "checked", checked, "err", err)
	}()
	return s.next.ToggleChecked(ctx, key)
}

func (s *LoggingAnnotationService) FindAnnotation(ctx context.Context, key string) (*sidetoc.Annotation, error) {
	return s.next.FindAnnotation(ctx, key)
}

func (s *LoggingAnnotationService) FindAnnotations(ctx context.Context, keys []string) (map[string]*sidetoc.Annotation, error) {
	return s.next.FindAnnotations(ctx, keys)
}
