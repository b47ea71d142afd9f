package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dfryer1193/portfolio/shared/db/sqlite"
	"github.com/dfryer1193/portfolio/site/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(filepath.Join(t.TempDir(), "ledger.db")))
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database.DB()
}

func TestSyncRepository_SaveAndGet(t *testing.T) {
	repo := NewSyncRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	wrote := false
	err := repo.SaveDocument(ctx, &domain.SyncedDocument{
		Name:      "homepage",
		Path:      "content/homepage.md",
		CommitSHA: "abc123",
		SyncedAt:  now,
	}, func(ctx context.Context) error {
		wrote = true
		return nil
	})
	if err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if !wrote {
		t.Error("write callback not invoked")
	}

	got, err := repo.GetDocument(ctx, "homepage")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.CommitSHA != "abc123" || got.Path != "content/homepage.md" {
		t.Errorf("GetDocument() = %+v", got)
	}
	if !got.SyncedAt.Equal(now) {
		t.Errorf("SyncedAt = %v, want %v", got.SyncedAt, now)
	}
	if got.Removed() {
		t.Error("document should not be removed")
	}
}

func TestSyncRepository_SaveRollsBackOnWriteFailure(t *testing.T) {
	repo := NewSyncRepository(setupTestDB(t))
	ctx := context.Background()

	writeErr := errors.New("disk full")
	err := repo.SaveDocument(ctx, &domain.SyncedDocument{Name: "about", Path: "content/about.md", CommitSHA: "def"},
		func(ctx context.Context) error { return writeErr })
	if !errors.Is(err, writeErr) {
		t.Fatalf("SaveDocument() error = %v, want %v", err, writeErr)
	}

	var nf *domain.NotFoundError
	if _, err := repo.GetDocument(ctx, "about"); !errors.As(err, &nf) {
		t.Errorf("GetDocument() after rollback error = %v, want NotFoundError", err)
	}
}

func TestSyncRepository_MarkRemoved(t *testing.T) {
	repo := NewSyncRepository(setupTestDB(t))
	ctx := context.Background()
	saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := saved.Add(time.Hour)

	if err := repo.SaveDocument(ctx, &domain.SyncedDocument{Name: "blog", Path: "content/blog.md", CommitSHA: "1", SyncedAt: saved}, nil); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if err := repo.MarkRemoved(ctx, "blog", at, nil); err != nil {
		t.Fatalf("MarkRemoved() error = %v", err)
	}

	got, err := repo.GetDocument(ctx, "blog")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if !got.Removed() || !got.RemovedAt.Equal(at) {
		t.Errorf("RemovedAt = %v, want %v", got.RemovedAt, at)
	}

	// unknown documents still get a ledger row
	if err := repo.MarkRemoved(ctx, "never-synced", at, nil); err != nil {
		t.Fatalf("MarkRemoved(never-synced) error = %v", err)
	}
	if got, err := repo.GetDocument(ctx, "never-synced"); err != nil || !got.Removed() {
		t.Errorf("GetDocument(never-synced) = %+v, %v", got, err)
	}

	// re-saving revives the document
	if err := repo.SaveDocument(ctx, &domain.SyncedDocument{Name: "blog", Path: "content/blog.md", CommitSHA: "2", SyncedAt: at.Add(time.Hour)}, nil); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if got, _ := repo.GetDocument(ctx, "blog"); got.Removed() {
		t.Error("re-saved document should not be removed")
	}
}

func TestSyncRepository_GetLatestSyncedTime(t *testing.T) {
	repo := NewSyncRepository(setupTestDB(t))
	ctx := context.Background()

	latest, err := repo.GetLatestSyncedTime(ctx)
	if err != nil {
		t.Fatalf("GetLatestSyncedTime() error = %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("empty ledger latest = %v, want zero", latest)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"homepage", "about", "contact"} {
		d := &domain.SyncedDocument{Name: name, Path: "content/" + name + ".md", CommitSHA: name, SyncedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.SaveDocument(ctx, d, nil); err != nil {
			t.Fatalf("SaveDocument(%s) error = %v", name, err)
		}
	}

	latest, err = repo.GetLatestSyncedTime(ctx)
	if err != nil {
		t.Fatalf("GetLatestSyncedTime() error = %v", err)
	}
	if want := base.Add(2 * time.Hour); !latest.Equal(want) {
		t.Errorf("latest = %v, want %v", latest, want)
	}
}

func TestSyncRepository_IgnoresOlderCommits(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	type step struct {
		sha     string
		at      time.Time
		remove  bool
		wantRun bool
	}

	tests := []struct {
		name        string
		steps       []step
		wantSHA     string
		wantRemoved bool
	}{
		{
			name: "older save after newer save",
			steps: []step{
				{sha: "new", at: base.Add(time.Minute), wantRun: true},
				{sha: "old", at: base, wantRun: false},
			},
			wantSHA: "new",
		},
		{
			name: "newer save after older save",
			steps: []step{
				{sha: "old", at: base, wantRun: true},
				{sha: "new", at: base.Add(time.Minute), wantRun: true},
			},
			wantSHA: "new",
		},
		{
			name: "same commit time replays",
			steps: []step{
				{sha: "a", at: base, wantRun: true},
				{sha: "b", at: base, wantRun: true},
			},
			wantSHA: "b",
		},
		{
			name: "older removal after newer save",
			steps: []step{
				{sha: "new", at: base.Add(time.Minute), wantRun: true},
				{remove: true, at: base, wantRun: false},
			},
			wantSHA: "new",
		},
		{
			name: "older save after newer removal",
			steps: []step{
				{remove: true, at: base.Add(time.Minute), wantRun: true},
				{sha: "old", at: base, wantRun: false},
			},
			wantSHA:     "",
			wantRemoved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewSyncRepository(setupTestDB(t))
			ctx := context.Background()

			for i, s := range tt.steps {
				ran := false
				fn := func(ctx context.Context) error {
					ran = true
					return nil
				}

				var err error
				if s.remove {
					err = repo.MarkRemoved(ctx, "homepage", s.at, fn)
				} else {
					err = repo.SaveDocument(ctx, &domain.SyncedDocument{
						Name: "homepage", Path: "content/homepage.md", CommitSHA: s.sha, SyncedAt: s.at,
					}, fn)
				}
				if err != nil {
					t.Fatalf("step %d: error = %v", i, err)
				}
				if ran != s.wantRun {
					t.Errorf("step %d: callback ran = %v, want %v", i, ran, s.wantRun)
				}
			}

			got, err := repo.GetDocument(ctx, "homepage")
			if err != nil {
				t.Fatalf("GetDocument() error = %v", err)
			}
			if got.CommitSHA != tt.wantSHA {
				t.Errorf("CommitSHA = %q, want %q", got.CommitSHA, tt.wantSHA)
			}
			if got.Removed() != tt.wantRemoved {
				t.Errorf("Removed() = %v, want %v", got.Removed(), tt.wantRemoved)
			}
		})
	}
}

func TestSyncRepository_ConcurrentSaves(t *testing.T) {
	repo := NewSyncRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	const writers = 8
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Go(func() {
			d := &domain.SyncedDocument{
				Name:      fmt.Sprintf("doc-%d", i),
				Path:      fmt.Sprintf("content/doc-%d.md", i),
				CommitSHA: fmt.Sprintf("sha-%d", i),
				SyncedAt:  base.Add(time.Duration(i) * time.Second),
			}
			// Holds the write transaction open like a slow store write.
			errs[i] = repo.SaveDocument(ctx, d, func(ctx context.Context) error {
				time.Sleep(20 * time.Millisecond)
				return nil
			})
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("SaveDocument(doc-%d) error = %v", i, err)
		}
	}
	for i := 0; i < writers; i++ {
		if _, err := repo.GetDocument(ctx, fmt.Sprintf("doc-%d", i)); err != nil {
			t.Errorf("GetDocument(doc-%d) error = %v", i, err)
		}
	}
}
