package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

// ListConfirmations payment confirmations of the tenant's staff with week start in [from, to]
func (s *Store) ListConfirmations(ctx context.Context, userID, from, to string) ([]model.PaymentConfirmation, error) {
	rows, err := s.query(ctx, `
		SELECT p.id, p.funcionario_id, p.data, p.valor, p.pago, p.updated_at
		FROM pagamentos_funcionarios p
		JOIN funcionarios f ON f.id = p.funcionario_id
		WHERE f.user_id = ? AND p.data >= ? AND p.data <= ?
		ORDER BY p.data ASC
	`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment confirmations: %w", err)
	}
	defer rows.Close()

	out := []model.PaymentConfirmation{}
	for rows.Next() {
		var p model.PaymentConfirmation
		if err := rows.Scan(&p.ID, &p.StaffID, &p.WeekStart, &p.Amount, &p.Paid, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment confirmation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetPaid records the paid flag of a staff member for a week.
// An existing confirmation for the same week is updated in place.
func (s *Store) SetPaid(ctx context.Context, userID string, p model.PaymentConfirmation) (model.PaymentConfirmation, error) {
	if _, err := s.GetStaff(ctx, userID, p.StaffID); err != nil {
		return model.PaymentConfirmation{}, err
	}

	p.ID = uuid.New().String()
	p.UpdatedAt = time.Now().UTC()

	_, err := s.exec(ctx, `
		INSERT INTO pagamentos_funcionarios (id, funcionario_id, data, valor, pago, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (funcionario_id, data) DO UPDATE SET
			valor = excluded.valor,
			pago = excluded.pago,
			updated_at = excluded.updated_at
	`, p.ID, p.StaffID, p.WeekStart, p.Amount, p.Paid, p.UpdatedAt)
	if err != nil {
		return model.PaymentConfirmation{}, fmt.Errorf("failed to upsert payment confirmation: %w", err)
	}

	// the conflict path keeps the original id
	row := s.queryRow(ctx, `
		SELECT id FROM pagamentos_funcionarios WHERE funcionario_id = ? AND data = ?
	`, p.StaffID, p.WeekStart)
	if err := row.Scan(&p.ID); err != nil {
		return model.PaymentConfirmation{}, fmt.Errorf("failed to read payment confirmation: %w", err)
	}
	return p, nil
}
