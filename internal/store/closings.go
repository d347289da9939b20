package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

const closingColumns = `id, user_id, data,
	japa_total, japa_taxa, japa_valor_itens, comissao_japa, pagamentos_japa,
	trattoria_total, trattoria_taxa, trattoria_valor_itens, comissao_trattoria, pagamentos_trattoria,
	total_geral, created_at`

// ClosingQueryOptions closing filters; nil bounds are open
type ClosingQueryOptions struct {
	UserID string
	From   *string
	To     *string
	Limit  int
	Offset int
}

// CreateClosing stores a confirmed closing, assigning id and creation time
func (s *Store) CreateClosing(ctx context.Context, c *model.ClosingRecord) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	japaPayments, err := json.Marshal(nonNilPayments(c.Japa.Payments))
	if err != nil {
		return fmt.Errorf("failed to encode japa payments: %w", err)
	}
	trattoriaPayments, err := json.Marshal(nonNilPayments(c.Trattoria.Payments))
	if err != nil {
		return fmt.Errorf("failed to encode trattoria payments: %w", err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO fechamentos (`+closingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.UserID, c.Date,
		c.Japa.Total, c.Japa.ServiceCharge, c.Japa.ItemsValue, c.Japa.Commission, string(japaPayments),
		c.Trattoria.Total, c.Trattoria.ServiceCharge, c.Trattoria.ItemsValue, c.Trattoria.Commission, string(trattoriaPayments),
		c.TotalGeneral, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrClosingExists
		}
		return fmt.Errorf("failed to insert closing: %w", err)
	}
	return nil
}

// GetClosing returns one closing of the tenant
func (s *Store) GetClosing(ctx context.Context, userID, id string) (model.ClosingRecord, error) {
	row := s.queryRow(ctx, `SELECT `+closingColumns+` FROM fechamentos WHERE user_id = ? AND id = ?`, userID, id)
	c, err := scanClosing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ClosingRecord{}, ErrNotFound
	}
	if err != nil {
		return model.ClosingRecord{}, fmt.Errorf("failed to get closing: %w", err)
	}
	return c, nil
}

// ListClosings returns closings in date order
func (s *Store) ListClosings(ctx context.Context, opts ClosingQueryOptions) ([]model.ClosingRecord, error) {
	query := `SELECT ` + closingColumns + ` FROM fechamentos WHERE user_id = ?`
	args := []any{opts.UserID}

	if opts.From != nil {
		query += " AND data >= ?"
		args = append(args, *opts.From)
	}
	if opts.To != nil {
		query += " AND data <= ?"
		args = append(args, *opts.To)
	}

	query += " ORDER BY data ASC"

	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query closings: %w", err)
	}
	defer rows.Close()

	closings := []model.ClosingRecord{}
	for rows.Next() {
		c, err := scanClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closing: %w", err)
		}
		closings = append(closings, c)
	}
	return closings, rows.Err()
}

// DeleteClosing removes one closing of the tenant
func (s *Store) DeleteClosing(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, `DELETE FROM fechamentos WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete closing: %w", err)
	}
	return affectedOrNotFound(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClosing(row rowScanner) (model.ClosingRecord, error) {
	var c model.ClosingRecord
	var japaPayments, trattoriaPayments string

	err := row.Scan(
		&c.ID, &c.UserID, &c.Date,
		&c.Japa.Total, &c.Japa.ServiceCharge, &c.Japa.ItemsValue, &c.Japa.Commission, &japaPayments,
		&c.Trattoria.Total, &c.Trattoria.ServiceCharge, &c.Trattoria.ItemsValue, &c.Trattoria.Commission, &trattoriaPayments,
		&c.TotalGeneral, &c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	if c.Japa.Payments, err = decodePayments(japaPayments); err != nil {
		return c, err
	}
	if c.Trattoria.Payments, err = decodePayments(trattoriaPayments); err != nil {
		return c, err
	}
	return c, nil
}

func decodePayments(raw string) (map[string]float64, error) {
	payments := map[string]float64{}
	if raw == "" {
		return payments, nil
	}
	if err := json.Unmarshal([]byte(raw), &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

func nonNilPayments(p map[string]float64) map[string]float64 {
	if p == nil {
		return map[string]float64{}
	}
	return p
}
