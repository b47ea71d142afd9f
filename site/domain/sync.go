package domain

import (
	"context"
	"time"
)

// SyncedDocument is the ledger row for a document mirrored from the CMS repository.
type SyncedDocument struct {
	Name      string
	Path      string
	CommitSHA string
	SyncedAt  time.Time
	RemovedAt time.Time
}

// Removed reports whether the document was deleted upstream.
func (d *SyncedDocument) Removed() bool {
	return !d.RemovedAt.IsZero()
}

type SyncRepository interface {
	// SaveDocument records the sync and runs write in the same transaction;
	// if write fails the ledger row is rolled back. A sync older than the
	// ledger row is dropped without calling write.
	SaveDocument(ctx context.Context, d *SyncedDocument, write func(ctx context.Context) error) error
	// MarkRemoved follows the same ordering rule as SaveDocument.
	MarkRemoved(ctx context.Context, name string, at time.Time, remove func(ctx context.Context) error) error
	GetDocument(ctx context.Context, name string) (*SyncedDocument, error)
	GetLatestSyncedTime(ctx context.Context) (time.Time, error)
}
