package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/sidetoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sidetoc.AnnotationService = (*AnnotationService)(nil)

// AnnotationService implements sidetoc.AnnotationService using SQLite.
// A row exists only while it carries a label or a checked mark.
type AnnotationService struct {
	db  *DB
	now func() time.Time
}

// NewAnnotationService creates a new AnnotationService.
func NewAnnotationService(db *DB) *AnnotationService {
	return &AnnotationService{db: db, now: time.Now}
}

// SetLabel stores a custom label for key. A blank label removes it.
func (s *AnnotationService) SetLabel(ctx context.Context, key, label string) error {
	if strings.TrimSpace(key) == "" {
		return sidetoc.Errorf(sidetoc.EINVALID, "annotation key required")
	}
	label = strings.TrimSpace(label)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annotations (id, key, label, checked, updated_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(key) DO UPDATE SET label = excluded.label, updated_at = excluded.updated_at
	`, uuid.New().String(), key, label, s.timestamp())
	if err != nil {
		return err
	}
	return s.prune(ctx, key)
}

// ToggleChecked flips the checked state for key and returns the new state.
func (s *AnnotationService) ToggleChecked(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, sidetoc.Errorf(sidetoc.EINVALID, "annotation key required")
	}

	var checked bool
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO annotations (id, key, label, checked, updated_at)
		VALUES (?, ?, '', 1, ?)
		ON CONFLICT(key) DO UPDATE SET checked = 1 - checked, updated_at = excluded.updated_at
		RETURNING checked
	`, uuid.New().String(), key, s.timestamp()).Scan(&checked)
	if err != nil {
		return false, err
	}
	if err := s.prune(ctx, key); err != nil {
		return false, err
	}
	return checked, nil
}

// FindAnnotation retrieves the annotation for key.
func (s *AnnotationService) FindAnnotation(ctx context.Context, key string) (*sidetoc.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, label, checked, updated_at
		FROM annotations
		WHERE key = ?
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sidetoc.Errorf(sidetoc.ENOTFOUND, "annotation not found")
	}
	return scanAnnotation(rows)
}

// FindAnnotations retrieves annotations for keys, indexed by key.
func (s *AnnotationService) FindAnnotations(ctx context.Context, keys []string) (map[string]*sidetoc.Annotation, error) {
	found := make(map[string]*sidetoc.Annotation)
	if len(keys) == 0 {
		return found, nil
	}

	in, args := placeholders(keys)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, label, checked, updated_at
		FROM annotations
		WHERE key IN (`+in+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		found[a.Key] = a
	}
	return found, rows.Err()
}

// prune deletes the row for key once it holds neither a label nor a check.
func (s *AnnotationService) prune(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM annotations WHERE key = ? AND label = '' AND checked = 0
	`, key)
	return err
}

func (s *AnnotationService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func scanAnnotation(rows *sql.Rows) (*sidetoc.Annotation, error) {
	var a sidetoc.Annotation
	var updatedAt string
	if err := rows.Scan(&a.ID, &a.Key, &a.Label, &a.Checked, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if a.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
