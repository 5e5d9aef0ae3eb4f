package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"credential-service/internal/layout"
	"credential-service/internal/models"
)

// encodeDocument serializes a template to its export format. The id,
// default flag and timestamps live in their own columns; the document holds
// everything the export format carries.
func encodeDocument(t *models.Template) (string, error) {
	doc := *t
	b, err := json.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("marshal template: %w", err)
	}
	return string(b), nil
}

func scanTemplate(row interface{ Scan(...any) error }) (*models.Template, error) {
	var doc string
	var t models.Template
	var isDefault int
	if err := row.Scan(&t.ID, &doc, &isDefault, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	var decoded models.Template
	if err := json.Unmarshal([]byte(doc), &decoded); err != nil {
		return nil, fmt.Errorf("decode template document: %w", err)
	}
	decoded.ID = t.ID
	decoded.IsDefault = isDefault == 1
	decoded.CreatedAt = t.CreatedAt
	decoded.UpdatedAt = t.UpdatedAt
	return &decoded, nil
}

// CreateTemplate persists a new template and returns its id.
func (s *Store) CreateTemplate(t *models.Template) (string, error) {
	if t.ID == "" {
		t.ID = layout.NewID()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	doc, err := encodeDocument(t)
	if err != nil {
		return "", err
	}
	_, err = s.db.Exec(
		`INSERT INTO templates (id, event_id, name, document, is_default, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.EventID, t.Name, doc, boolToInt(t.IsDefault), t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert template: %w", err)
	}
	return t.ID, nil
}

// GetTemplate loads one template as an immutable snapshot.
func (s *Store) GetTemplate(id string) (*models.Template, error) {
	row := s.db.QueryRow(
		`SELECT id, document, is_default, created_at, updated_at FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select template: %w", err)
	}
	return t, nil
}

// ListTemplates returns every template for an event, oldest first.
func (s *Store) ListTemplates(eventID string) ([]*models.Template, error) {
	rows, err := s.db.Query(
		`SELECT id, document, is_default, created_at, updated_at FROM templates
		 WHERE event_id = ? ORDER BY created_at, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTemplate replaces a template's name, components and physical size.
func (s *Store) UpdateTemplate(id string, t *models.Template) error {
	existing, err := s.GetTemplate(id)
	if err != nil {
		return err
	}
	existing.Name = t.Name
	existing.Components = t.Components
	existing.WidthCm = t.WidthCm
	existing.HeightCm = t.HeightCm
	existing.UpdatedAt = time.Now().UTC()

	doc, err := encodeDocument(existing)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE templates SET name = ?, document = ?, updated_at = ? WHERE id = ?`,
		existing.Name, doc, existing.UpdatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTemplate removes a template. Nothing references templates, so there
// is no cascade; print paths handle a missing template as a not-found.
func (s *Store) DeleteTemplate(id string) error {
	res, err := s.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetDefault marks one template as the event's default, unsetting all
// others in the same transaction. Two sessions racing here is last-write-
// wins; the invariant is best-effort, not strongly consistent.
func (s *Store) SetDefault(eventID, templateID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE templates SET is_default = 0 WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("unset defaults: %w", err)
	}
	res, err := tx.Exec(
		`UPDATE templates SET is_default = 1 WHERE id = ? AND event_id = ?`, templateID, eventID)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", templateID, ErrNotFound)
	}
	return tx.Commit()
}

// DefaultTemplate returns the event's default template, or ErrNotFound when
// none is flagged.
func (s *Store) DefaultTemplate(eventID string) (*models.Template, error) {
	row := s.db.QueryRow(
		`SELECT id, document, is_default, created_at, updated_at FROM templates
		 WHERE event_id = ? AND is_default = 1`, eventID)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("default template for event %s: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select default template: %w", err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
