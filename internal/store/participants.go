package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"credential-service/internal/layout"
	"credential-service/internal/models"
)

// CreateParticipant persists a participant record. The flat field map gains
// an "id" entry so QR and barcode payloads always anchor on it.
func (s *Store) CreateParticipant(p *models.Participant) (string, error) {
	if p.ID == "" {
		p.ID = layout.NewID()
	}
	if p.Fields == nil {
		p.Fields = models.Record{}
	}
	p.Fields["id"] = p.ID
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	fields, err := json.Marshal(p.Fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO participants (id, event_id, fields, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.EventID, string(fields), p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert participant: %w", err)
	}
	return p.ID, nil
}

func scanParticipant(row interface{ Scan(...any) error }) (*models.Participant, error) {
	var p models.Participant
	var fields string
	if err := row.Scan(&p.ID, &p.EventID, &fields, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &p.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return &p, nil
}

// GetParticipant looks a record up by id.
func (s *Store) GetParticipant(id string) (*models.Participant, error) {
	row := s.db.QueryRow(
		`SELECT id, event_id, fields, status, created_at, updated_at FROM participants WHERE id = ?`, id)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns an event's roster, newest first.
func (s *Store) ListParticipants(eventID string) ([]*models.Participant, error) {
	rows, err := s.db.Query(
		`SELECT id, event_id, fields, status, created_at, updated_at FROM participants
		 WHERE event_id = ? ORDER BY created_at DESC, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SearchParticipants filters the roster by a case-insensitive substring
// match over the stored fields, which is how the reception desk finds
// people without a scannable badge.
func (s *Store) SearchParticipants(eventID, term string) ([]*models.Participant, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListParticipants(eventID)
	}
	rows, err := s.db.Query(
		`SELECT id, event_id, fields, status, created_at, updated_at FROM participants
		 WHERE event_id = ? AND fields LIKE ? COLLATE NOCASE ORDER BY created_at DESC, id`,
		eventID, "%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CheckIn marks a participant credentialed. It reports whether they had
// already checked in, so the desk can warn about duplicate badges.
func (s *Store) CheckIn(id string) (*models.Participant, bool, error) {
	p, err := s.GetParticipant(id)
	if err != nil {
		return nil, false, err
	}
	if p.Status == models.StatusCredentialed {
		return p, true, nil
	}
	p.Status = models.StatusCredentialed
	p.UpdatedAt = time.Now().UTC()
	_, err = s.db.Exec(
		`UPDATE participants SET status = ?, updated_at = ? WHERE id = ?`,
		p.Status, p.UpdatedAt, id)
	if err != nil {
		return nil, false, fmt.Errorf("update status: %w", err)
	}
	return p, false, nil
}
