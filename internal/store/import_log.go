package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

// CreateImportLog opens an import log in processing state
func (s *Store) CreateImportLog(ctx context.Context, l *model.ImportLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = model.ImportStatusProcessing
	}
	l.CreatedAt = time.Now().UTC()

	_, err := s.exec(ctx, `
		INSERT INTO import_logs (id, user_id, filename, file_size, format, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.UserID, l.Filename, l.FileSize, l.Format, l.Status, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// UpdateImportLog closes an import log with its outcome
func (s *Store) UpdateImportLog(ctx context.Context, l *model.ImportLog) error {
	now := time.Now().UTC()
	l.CompletedAt = &now

	res, err := s.exec(ctx, `
		UPDATE import_logs SET
			format = ?,
			total_rows = ?,
			valid_rows = ?,
			status = ?,
			message = ?,
			archive_url = ?,
			completed_at = ?
		WHERE id = ?
	`, l.Format, l.TotalRows, l.ValidRows, l.Status, l.Message, l.ArchiveURL, now, l.ID)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return affectedOrNotFound(res)
}

// ListImportLogs most recent import logs of the tenant
func (s *Store) ListImportLogs(ctx context.Context, userID string, limit int) ([]model.ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.query(ctx, `
		SELECT id, user_id, filename, file_size, format, total_rows, valid_rows,
			status, message, archive_url, created_at, completed_at
		FROM import_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	logs := []model.ImportLog{}
	for rows.Next() {
		var l model.ImportLog
		var completed sql.NullTime
		if err := rows.Scan(&l.ID, &l.UserID, &l.Filename, &l.FileSize, &l.Format, &l.TotalRows, &l.ValidRows,
			&l.Status, &l.Message, &l.ArchiveURL, &l.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			l.CompletedAt = &t
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
