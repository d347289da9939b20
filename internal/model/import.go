package model

import "time"

// Import log statuses
const (
	ImportStatusProcessing = "processing"
	ImportStatusDone       = "done"
	ImportStatusFailed     = "failed"
)

// ImportLog audit entry for one spreadsheet ingestion
type ImportLog struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Filename    string     `json:"filename"`
	FileSize    int64      `json:"fileSize"`
	Format      string     `json:"format"`
	TotalRows   int        `json:"totalRows"`
	ValidRows   int        `json:"validRows"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	ArchiveURL  string     `json:"archiveUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
