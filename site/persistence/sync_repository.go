package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/portfolio/shared/db"
	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/rs/zerolog/log"
)

var _ domain.SyncRepository = (*SQLiteSyncRepository)(nil)

// SQLiteSyncRepository is the ledger of documents mirrored from the CMS repository.
type SQLiteSyncRepository struct {
	db *sql.DB
}

func NewSyncRepository(conn *sql.DB) *SQLiteSyncRepository {
	return &SQLiteSyncRepository{
		db: conn,
	}
}

const upsertDocumentQuery = `
	INSERT INTO synced_documents (name, path, commit_sha, synced_at, removed_at)
	VALUES (?, ?, ?, ?, NULL)
	ON CONFLICT(name) DO UPDATE SET
		path = excluded.path,
		commit_sha = excluded.commit_sha,
		synced_at = excluded.synced_at,
		removed_at = NULL
	WHERE excluded.synced_at >= synced_documents.synced_at
`

// SaveDocument upserts the ledger row and runs write in the same transaction.
// When the ledger already holds a newer commit for the document, nothing is
// written and write is not called.
func (r *SQLiteSyncRepository) SaveDocument(ctx context.Context, d *domain.SyncedDocument, write func(ctx context.Context) error) error {
	if d == nil {
		return fmt.Errorf("synced document cannot be nil")
	}
	if d.Name == "" {
		return fmt.Errorf("synced document name cannot be empty")
	}

	syncedAt := d.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		res, err := executor.ExecContext(txCtx, upsertDocumentQuery, d.Name, d.Path, d.CommitSHA, syncedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to upsert synced document: %w", err)
		}
		if stale, err := isStale(res); err != nil || stale {
			if stale {
				log.Debug().Str("name", d.Name).Str("sha", d.CommitSHA).Msg("Skipping stale document sync")
			}
			return err
		}

		if write != nil {
			if err := write(txCtx); err != nil {
				return err
			}
		}
		return nil
	})
}

const markRemovedQuery = `
	INSERT INTO synced_documents (name, path, commit_sha, synced_at, removed_at)
	VALUES (?, '', '', ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		synced_at = excluded.synced_at,
		removed_at = excluded.removed_at
	WHERE excluded.synced_at >= synced_documents.synced_at
`

// MarkRemoved flags a document as deleted upstream and runs remove in the same
// transaction. A removal older than the ledger row is ignored.
func (r *SQLiteSyncRepository) MarkRemoved(ctx context.Context, name string, at time.Time, remove func(ctx context.Context) error) error {
	if name == "" {
		return fmt.Errorf("synced document name cannot be empty")
	}
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		res, err := executor.ExecContext(txCtx, markRemovedQuery, name, at, at)
		if err != nil {
			return fmt.Errorf("failed to mark document removed: %w", err)
		}
		if stale, err := isStale(res); err != nil || stale {
			if stale {
				log.Debug().Str("name", name).Msg("Skipping stale document removal")
			}
			return err
		}

		if remove != nil {
			if err := remove(txCtx); err != nil {
				return err
			}
		}
		return nil
	})
}

// isStale reports whether a guarded upsert left the row untouched.
func isStale(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 0, nil
}

const getDocumentQuery = `
	SELECT name, path, commit_sha, synced_at, removed_at
	FROM synced_documents
	WHERE name = ?
`

func (r *SQLiteSyncRepository) GetDocument(ctx context.Context, name string) (*domain.SyncedDocument, error) {
	if name == "" {
		return nil, fmt.Errorf("synced document name cannot be empty")
	}

	var row documentRow
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getDocumentQuery, name).Scan(
		&row.Name,
		&row.Path,
		&row.CommitSHA,
		&row.SyncedAt,
		&row.RemovedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Name: name, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get synced document: %w", err)
	}

	return row.toDomain(), nil
}

const getLatestSyncedTimeQuery = `
	SELECT synced_at FROM synced_documents ORDER BY synced_at DESC LIMIT 1
`

// GetLatestSyncedTime returns the zero time when nothing has been synced yet.
func (r *SQLiteSyncRepository) GetLatestSyncedTime(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx, getLatestSyncedTimeQuery).Scan(&latest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get latest synced time: %w", err)
	}

	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

type documentRow struct {
	Name      string
	Path      string
	CommitSHA string
	SyncedAt  sql.NullTime
	RemovedAt sql.NullTime
}

func (dr *documentRow) toDomain() *domain.SyncedDocument {
	d := &domain.SyncedDocument{
		Name:      dr.Name,
		Path:      dr.Path,
		CommitSHA: dr.CommitSHA,
	}
	if dr.SyncedAt.Valid {
		d.SyncedAt = dr.SyncedAt.Time
	}
	if dr.RemovedAt.Valid {
		d.RemovedAt = dr.RemovedAt.Time
	}
	return d
}
