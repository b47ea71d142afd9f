package application

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/google/go-github/v75/github"
	"github.com/rs/zerolog/log"
)

const zeroSHA = "0000000000000000000000000000000000000000"

// SyncService mirrors content documents the CMS commits to the source
// repository into the writable content store, recording each one in the sync
// ledger. Only the default branch is mirrored.
type SyncService struct {
	sourceRepo     domain.SourceRepository
	store          domain.WritableContentStore
	repo           domain.SyncRepository
	contentPath    string
	mainBranchName string

	// cancelled by Close; background work never uses a request context
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

func NewSyncService(
	repo domain.SyncRepository,
	sourceRepo domain.SourceRepository,
	store domain.WritableContentStore,
	contentPath string,
	mainBranchName string,
) *SyncService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SyncService{
		sourceRepo:     sourceRepo,
		store:          store,
		repo:           repo,
		contentPath:    strings.Trim(contentPath, "/"),
		mainBranchName: mainBranchName,
		ctx:            ctx,
		cancel:         cancel,
		wg:             &sync.WaitGroup{},
	}
}

// Close cancels in-flight work and waits for the workers to exit.
func (s *SyncService) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// Wait blocks until the workers spawned so far have finished.
func (s *SyncService) Wait() {
	s.wg.Wait()
}

// StartCatchUp runs SyncRepositoryChanges on a worker bound to the service
// lifecycle, so Close waits for it.
func (s *SyncService) StartCatchUp() {
	s.wg.Go(func() {
		if err := s.SyncRepositoryChanges(); err != nil {
			log.Error().Err(err).Msg("Failed to catch up with content repository")
		}
	})
}

// SyncRepositoryChanges mirrors the default-branch commits made since the
// latest sync, catching up on anything pushed while the server was down.
func (s *SyncService) SyncRepositoryChanges() error {
	lastSyncedAt, err := s.repo.GetLatestSyncedTime(s.ctx)
	if err != nil {
		return fmt.Errorf("could not get the time of the last sync: %w", err)
	}

	commits, err := s.sourceRepo.GetCommitsSince(s.ctx, s.mainBranchName, lastSyncedAt)
	if err != nil {
		return fmt.Errorf("failed to get commits for branch %s: %w", s.mainBranchName, err)
	}
	if len(commits) == 0 {
		log.Info().Time("since", lastSyncedAt).Msg("Content is up to date")
		return nil
	}

	changes, err := s.analyzeCommitFiles(commits)
	if err != nil {
		return err
	}

	for _, c := range changes.sortedRemovals() {
		s.removeDocument(s.ctx, c)
	}
	for _, c := range changes.sortedSyncs() {
		s.syncDocument(s.ctx, c)
	}

	log.Info().
		Int("synced", len(changes.toSync)).
		Int("removed", len(changes.toRemove)).
		Msg("Caught up with content repository")
	return nil
}

// HandlePushEvent validates the push and returns; the documents are fetched
// and written by background workers bound to the service lifecycle.
func (s *SyncService) HandlePushEvent(evt *github.PushEvent) error {
	if evt.GetRef() != "refs/heads/"+s.mainBranchName {
		log.Debug().Str("ref", evt.GetRef()).Msg("Ignoring push to non-default branch")
		return nil
	}

	var commits []*github.RepositoryCommit
	if before := evt.GetBefore(); before != "" && before != zeroSHA {
		var err error
		commits, err = s.sourceRepo.GetCommitsInRange(s.ctx, before, evt.GetAfter())
		if err != nil {
			return fmt.Errorf("failed to get commits in range %s...%s: %w", before, evt.GetAfter(), err)
		}
	} else {
		headCommit, err := s.sourceRepo.GetCommit(s.ctx, evt.GetAfter())
		if err != nil {
			return fmt.Errorf("failed to get commit %s: %w", evt.GetAfter(), err)
		}
		commits = []*github.RepositoryCommit{headCommit}
	}

	changes, err := s.analyzeCommitFiles(commits)
	if err != nil {
		return fmt.Errorf("failed to analyze commits: %w", err)
	}

	for _, c := range changes.sortedRemovals() {
		s.wg.Go(func() {
			s.removeDocument(s.ctx, c)
		})
	}
	for _, c := range changes.sortedSyncs() {
		s.wg.Go(func() {
			s.syncDocument(s.ctx, c)
		})
	}

	return nil
}

// documentChange is the latest state of one repository file across a commit range.
type documentChange struct {
	path   string
	name   string
	commit *github.RepositoryCommit
}

type commitChanges struct {
	toSync   map[string]documentChange
	toRemove map[string]documentChange
}

func (c *commitChanges) sortedSyncs() []documentChange {
	return sortedChanges(c.toSync)
}

func (c *commitChanges) sortedRemovals() []documentChange {
	return sortedChanges(c.toRemove)
}

func sortedChanges(m map[string]documentChange) []documentChange {
	out := make([]documentChange, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

// analyzeCommitFiles replays the commits oldest first so that the last change
// to each file wins.
func (s *SyncService) analyzeCommitFiles(commits []*github.RepositoryCommit) (*commitChanges, error) {
	full := make([]*github.RepositoryCommit, 0, len(commits))
	for _, summary := range commits {
		commit := summary
		if len(summary.Files) == 0 {
			var err error
			commit, err = s.sourceRepo.GetCommit(s.ctx, summary.GetSHA())
			if err != nil {
				return nil, fmt.Errorf("failed to get full commit %s: %w", summary.GetSHA(), err)
			}
		}
		full = append(full, commit)
	}

	sort.SliceStable(full, func(i, j int) bool {
		return commitTime(full[i]).Before(commitTime(full[j]))
	})

	changes := &commitChanges{
		toSync:   make(map[string]documentChange),
		toRemove: make(map[string]documentChange),
	}
	for _, commit := range full {
		for _, file := range commit.Files {
			s.handleCommitFile(file.GetFilename(), file.GetStatus(), file.GetPreviousFilename(), commit, changes)
		}
	}
	return changes, nil
}

func (s *SyncService) handleCommitFile(filePath, status, previousPath string, commit *github.RepositoryCommit, changes *commitChanges) {
	currentName, currentIsDoc := s.documentNameFor(filePath)
	previousName, previousIsDoc := s.documentNameFor(previousPath)

	upsert := func() {
		if !currentIsDoc {
			return
		}
		changes.toSync[filePath] = documentChange{path: filePath, name: currentName, commit: commit}
		delete(changes.toRemove, filePath)
	}
	remove := func(p, name string) {
		delete(changes.toSync, p)
		changes.toRemove[p] = documentChange{path: p, name: name, commit: commit}
	}

	switch status {
	case "added", "modified", "changed", "copied":
		upsert()
	case "removed":
		if currentIsDoc {
			remove(filePath, currentName)
		}
	case "renamed":
		if previousIsDoc {
			remove(previousPath, previousName)
		}
		upsert()
	}
}

// documentNameFor maps "<contentPath>/projects/ledger.md" to "projects/ledger".
func (s *SyncService) documentNameFor(filePath string) (string, bool) {
	if filePath == "" || path.Ext(filePath) != ".md" {
		return "", false
	}
	rel := filePath
	if s.contentPath != "" {
		var ok bool
		rel, ok = strings.CutPrefix(filePath, s.contentPath+"/")
		if !ok {
			return "", false
		}
	}
	name := strings.TrimSuffix(rel, ".md")
	if name == "" || strings.HasPrefix(path.Base(name), ".") {
		return "", false
	}
	return name, true
}

func (s *SyncService) syncDocument(ctx context.Context, c documentChange) {
	sha := c.commit.GetSHA()
	data, err := s.sourceRepo.GetFileContents(ctx, c.path, sha)
	if err != nil {
		log.Error().Err(err).Str("path", c.path).Str("commitSHA", sha).Msg("Failed to get file contents")
		return
	}

	if _, err := ParseDocument(c.name, data); err != nil {
		// mirrored anyway; the store is the system of record and the page
		// will fail when it is loaded
		log.Warn().Err(err).Str("document", c.name).Msg("Synced document does not parse")
	}

	doc := &domain.SyncedDocument{
		Name:      c.name,
		Path:      c.path,
		CommitSHA: sha,
		SyncedAt:  commitTime(c.commit),
	}
	err = s.repo.SaveDocument(ctx, doc, func(ctx context.Context) error {
		return s.store.Write(ctx, c.name, data)
	})
	if err != nil {
		log.Error().Err(err).Str("document", c.name).Msg("Failed to sync document")
		return
	}

	log.Info().Str("document", c.name).Str("commitSHA", sha).Msg("Synced document")
}

func (s *SyncService) removeDocument(ctx context.Context, c documentChange) {
	err := s.repo.MarkRemoved(ctx, c.name, commitTime(c.commit), func(ctx context.Context) error {
		return s.store.Delete(ctx, c.name)
	})
	if err != nil {
		log.Error().Err(err).Str("document", c.name).Msg("Failed to remove document")
		return
	}

	log.Info().Str("document", c.name).Msg("Removed document")
}

func commitTime(c *github.RepositoryCommit) time.Time {
	t := c.GetCommit().GetAuthor().GetDate().Time
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
