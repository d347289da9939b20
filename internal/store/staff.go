package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

// StaffUpdate partial update; nil fields are left untouched
type StaffUpdate struct {
	Name   *string       `json:"name"`
	Sector *model.Sector `json:"sector"`
	Brand  *model.Brand  `json:"brand"`
	Active *bool         `json:"active"`
}

// CreateStaff adds a staff member to the tenant roster
func (s *Store) CreateStaff(ctx context.Context, m *model.StaffMember) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.exec(ctx, `
		INSERT INTO funcionarios (id, user_id, nome, setor, frente, ativo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Name, string(m.Sector), string(m.Brand), m.Active, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert staff member: %w", err)
	}
	return nil
}

// GetStaff returns one staff member of the tenant
func (s *Store) GetStaff(ctx context.Context, userID, id string) (model.StaffMember, error) {
	row := s.queryRow(ctx, `
		SELECT id, user_id, nome, setor, frente, ativo, created_at
		FROM funcionarios WHERE user_id = ? AND id = ?
	`, userID, id)

	m, err := scanStaff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StaffMember{}, ErrNotFound
	}
	if err != nil {
		return model.StaffMember{}, fmt.Errorf("failed to get staff member: %w", err)
	}
	return m, nil
}

// ListStaff returns the roster ordered by name
func (s *Store) ListStaff(ctx context.Context, userID string, activeOnly bool) ([]model.StaffMember, error) {
	query := `SELECT id, user_id, nome, setor, frente, ativo, created_at FROM funcionarios WHERE user_id = ?`
	args := []any{userID}
	if activeOnly {
		query += " AND ativo = ?"
		args = append(args, true)
	}
	query += " ORDER BY nome ASC, created_at ASC"

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	staff := []model.StaffMember{}
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		staff = append(staff, m)
	}
	return staff, rows.Err()
}

// UpdateStaff applies a partial update and returns the stored member
func (s *Store) UpdateStaff(ctx context.Context, userID, id string, upd StaffUpdate) (model.StaffMember, error) {
	current, err := s.GetStaff(ctx, userID, id)
	if err != nil {
		return model.StaffMember{}, err
	}

	if upd.Name != nil {
		current.Name = *upd.Name
	}
	if upd.Sector != nil {
		current.Sector = *upd.Sector
	}
	if upd.Brand != nil {
		current.Brand = *upd.Brand
	}
	if upd.Active != nil {
		current.Active = *upd.Active
	}

	res, err := s.exec(ctx, `
		UPDATE funcionarios SET nome = ?, setor = ?, frente = ?, ativo = ?
		WHERE user_id = ? AND id = ?
	`, current.Name, string(current.Sector), string(current.Brand), current.Active, userID, id)
	if err != nil {
		return model.StaffMember{}, fmt.Errorf("failed to update staff member: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return model.StaffMember{}, err
	}
	return current, nil
}

// DeactivateStaff soft-deletes a staff member
func (s *Store) DeactivateStaff(ctx context.Context, userID, id string) error {
	inactive := false
	_, err := s.UpdateStaff(ctx, userID, id, StaffUpdate{Active: &inactive})
	return err
}

func scanStaff(row rowScanner) (model.StaffMember, error) {
	var m model.StaffMember
	var sector, brand string
	if err := row.Scan(&m.ID, &m.UserID, &m.Name, &sector, &brand, &m.Active, &m.CreatedAt); err != nil {
		return m, err
	}
	m.Sector = model.Sector(sector)
	m.Brand = model.Brand(brand)
	return m, nil
}
