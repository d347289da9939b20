package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

// CreateExpense records an expense
func (s *Store) CreateExpense(ctx context.Context, e *model.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.exec(ctx, `
		INSERT INTO despesas (id, user_id, data, descricao, valor, categoria, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.Date, e.Description, e.Amount, e.Category, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ListExpenses returns the tenant's expenses in date order; nil bounds are open
func (s *Store) ListExpenses(ctx context.Context, userID string, from, to *string) ([]model.Expense, error) {
	query := `SELECT id, user_id, data, descricao, valor, categoria, created_at FROM despesas WHERE user_id = ?`
	args := []any{userID}
	if from != nil {
		query += " AND data >= ?"
		args = append(args, *from)
	}
	if to != nil {
		query += " AND data <= ?"
		args = append(args, *to)
	}
	query += " ORDER BY data ASC, created_at ASC"

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Description, &e.Amount, &e.Category, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// DeleteExpense removes one expense of the tenant
func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, `DELETE FROM despesas WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return affectedOrNotFound(res)
}
