package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/google/go-github/v75/github"
)

func newTestRepository(t *testing.T, mux *http.ServeMux) *GithubSourceRepository {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	client.BaseURL = base
	return NewGithubSourceRepository(client, "example", "content")
}

func TestGetCommitsSince_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/example/content/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sha") != "main" {
			t.Errorf("sha = %q, want main", r.URL.Query().Get("sha"))
		}
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/example/content/commits?page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"sha":"a"},{"sha":"b"}]`)
			return
		}
		fmt.Fprint(w, `[{"sha":"c"}]`)
	})

	repo := newTestRepository(t, mux)
	commits, err := repo.GetCommitsSince(context.Background(), "main", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetCommitsSince() error = %v", err)
	}
	if len(commits) != 3 || commits[2].GetSHA() != "c" {
		t.Errorf("GetCommitsSince() returned %d commits", len(commits))
	}
}

func TestGetFileContents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/example/content/contents/content/homepage.md", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ref") != "abc" {
			t.Errorf("ref = %q", r.URL.Query().Get("ref"))
		}
		encoded := base64.StdEncoding.EncodeToString([]byte("---\ntitle: Hi\n---\n"))
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","content":%q,"path":"content/homepage.md"}`, encoded)
	})
	mux.HandleFunc("/repos/example/content/contents/content/gone.md", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	repo := newTestRepository(t, mux)
	ctx := context.Background()

	data, err := repo.GetFileContents(ctx, "content/homepage.md", "abc")
	if err != nil {
		t.Fatalf("GetFileContents() error = %v", err)
	}
	if string(data) != "---\ntitle: Hi\n---\n" {
		t.Errorf("GetFileContents() = %q", data)
	}

	_, err = repo.GetFileContents(ctx, "content/gone.md", "abc")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("GetFileContents(missing) error = %v, want NotFoundError", err)
	}
}

func TestGetDefaultBranchName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/example/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"full_name":"example/content","default_branch":"trunk"}`)
	})

	repo := newTestRepository(t, mux)
	branch, err := repo.GetDefaultBranchName(context.Background())
	if err != nil {
		t.Fatalf("GetDefaultBranchName() error = %v", err)
	}
	if branch != "trunk" {
		t.Errorf("GetDefaultBranchName() = %q", branch)
	}
	if repo.GetRepoFullName() != "example/content" {
		t.Errorf("GetRepoFullName() = %q", repo.GetRepoFullName())
	}
}

func TestHandleGithubError(t *testing.T) {
	if handleGithubError("op", nil) != nil {
		t.Error("nil error should stay nil")
	}

	apiErr := &github.ErrorResponse{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  "rate limited",
	}
	got := handleGithubError("listing commits", apiErr).Error()
	if got != "github: listing commits failed with status 403: rate limited" {
		t.Errorf("handleGithubError() = %q", got)
	}
}
