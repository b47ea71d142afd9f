package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/google/go-github/v75/github"
)

const perPage = 100

// GithubSourceRepository is the domain.SourceRepository the CMS commits to,
// read through the GitHub REST API.
type GithubSourceRepository struct {
	client  *github.Client
	owner   string
	gitRepo string
}

var _ domain.SourceRepository = (*GithubSourceRepository)(nil)

// NewClient returns an API client, authenticated when token is set.
func NewClient(token string) *github.Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

func NewGithubSourceRepository(client *github.Client, owner string, gitRepo string) *GithubSourceRepository {
	return &GithubSourceRepository{
		client:  client,
		owner:   owner,
		gitRepo: gitRepo,
	}
}

// GetCommitsSince lists every commit on a branch since the given time,
// following pagination. A zero since lists the whole history.
func (g *GithubSourceRepository) GetCommitsSince(ctx context.Context, branchName string, since time.Time) ([]*github.RepositoryCommit, error) {
	op := fmt.Sprintf("listing commits for branch %s", branchName)
	opts := &github.CommitsListOptions{
		SHA:         branchName,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var all []*github.RepositoryCommit
	for {
		commits, resp, err := g.client.Repositories.ListCommits(ctx, g.owner, g.gitRepo, opts)
		if err != nil {
			return nil, handleGithubError(op, err)
		}
		all = append(all, commits...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetCommitsInRange fetches the commits between baseCommit and headCommit, as
// listed by a push event.
func (g *GithubSourceRepository) GetCommitsInRange(ctx context.Context, baseCommit string, headCommit string) ([]*github.RepositoryCommit, error) {
	op := fmt.Sprintf("comparing commits %s...%s", baseCommit, headCommit)
	comparison, _, err := g.client.Repositories.CompareCommits(ctx, g.owner, g.gitRepo, baseCommit, headCommit, nil)
	if err != nil {
		return nil, handleGithubError(op, err)
	}
	return comparison.Commits, nil
}

// GetCommit fetches a single commit, including its changed files.
func (g *GithubSourceRepository) GetCommit(ctx context.Context, sha string) (*github.RepositoryCommit, error) {
	op := fmt.Sprintf("getting commit %s", sha)
	commit, _, err := g.client.Repositories.GetCommit(ctx, g.owner, g.gitRepo, sha, nil)
	if err != nil {
		return nil, handleGithubError(op, err)
	}
	return commit, nil
}

// GetFileContents fetches a file at a ref. A missing file is a
// *domain.NotFoundError.
func (g *GithubSourceRepository) GetFileContents(ctx context.Context, path string, ref string) ([]byte, error) {
	op := fmt.Sprintf("getting file %s at ref %s", path, ref)
	fileContent, _, resp, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, &domain.NotFoundError{Name: path, Err: handleGithubError(op, err)}
		}
		return nil, handleGithubError(op, err)
	}

	if fileContent == nil {
		return nil, fmt.Errorf("github: %s returned a directory, not a file", op)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: %s failed to decode content: %w", op, err)
	}

	return []byte(content), nil
}

func (g *GithubSourceRepository) GetRepoFullName() string {
	return fmt.Sprintf("%s/%s", g.owner, g.gitRepo)
}

// GetDefaultBranchName fetches the repository metadata and returns the name of the default branch.
func (g *GithubSourceRepository) GetDefaultBranchName(ctx context.Context) (string, error) {
	op := fmt.Sprintf("getting repository info for %s", g.GetRepoFullName())
	repo, _, err := g.client.Repositories.Get(ctx, g.owner, g.gitRepo)
	if err != nil {
		return "", handleGithubError(op, err)
	}
	return repo.GetDefaultBranch(), nil
}

// handleGithubError turns go-github errors into messages that name the
// operation and the API status.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return fmt.Errorf("github: %s failed with status %d: %s", op, errResp.Response.StatusCode, errResp.Message)
	}

	return fmt.Errorf("github: %s failed: %w", op, err)
}
