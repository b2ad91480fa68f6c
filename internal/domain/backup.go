package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BackupDocument is the JSON snapshot written to the document store.
// It carries the full loan and investor books plus who took the backup.
type BackupDocument struct {
	Loans      []*Loan     `json:"loans"`
	Investors  []*Investor `json:"investors"`
	UserID     uuid.UUID   `json:"userId"`
	UserEmail  string      `json:"userEmail"`
	BackedUpAt time.Time   `json:"backedUpAt"`
	FileName   string      `json:"fileName"`
}

// BackupInfo describes a stored snapshot without its payload.
type BackupInfo struct {
	FileName   string    `json:"fileName"`
	Size       int64     `json:"size"`
	BackedUpAt time.Time `json:"backedUpAt"`
}

// BackupStore persists JSON snapshot blobs in the secondary document store.
type BackupStore interface {
	Put(ctx context.Context, doc *BackupDocument) error
	Get(ctx context.Context, fileName string) (*BackupDocument, error)
	List(ctx context.Context) ([]*BackupInfo, error)
}
