package domain

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
)

// SourceRepository is the git repository the CMS commits content documents to.
type SourceRepository interface {
	GetCommitsSince(ctx context.Context, branchName string, since time.Time) ([]*github.RepositoryCommit, error)
	GetCommitsInRange(ctx context.Context, baseCommit string, headCommit string) ([]*github.RepositoryCommit, error)
	GetCommit(ctx context.Context, sha string) (*github.RepositoryCommit, error)
	GetFileContents(ctx context.Context, path string, ref string) ([]byte, error)
	GetDefaultBranchName(ctx context.Context) (string, error)
	GetRepoFullName() string
}
