// Package source maintains git checkouts of the recipe repositories
// and extracts committed SRCINFO dumps from them.  It is the
// alternative to the published srcinfo cache for deployments that
// track a recipe tree directly.
package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/msys2/msys2-web/pkg/types"
)

// A Checkout manages one cloned recipe repository.  Every directory
// at the top level holding a .SRCINFO file is one recipe.
type Checkout struct {
	l hclog.Logger

	// URL is the remote, Path the local clone location and Repo
	// the target repository name recorded on parsed sections.
	URL  string
	Path string
	Repo string

	mu   sync.Mutex
	repo *git.Repository
}

func NewCheckout(l hclog.Logger, url, path, repo string) *Checkout {
	return &Checkout{
		l:    l.Named("git"),
		URL:  url,
		Path: path,
		Repo: repo,
	}
}

// open clones on first use and reuses the clone afterwards.
func (c *Checkout) open(ctx context.Context) error {
	if c.repo != nil {
		return nil
	}
	repo, err := git.PlainOpen(c.Path)
	if err == nil {
		c.repo = repo
		return nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return err
	}
	c.l.Info("cloning recipe repository", "url", c.URL, "path", c.Path)
	c.repo, err = git.PlainCloneContext(ctx, c.Path, false, &git.CloneOptions{
		URL: c.URL,
	})
	return err
}

// At returns the current HEAD hash.
func (c *Checkout) At() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.repo == nil {
		return "", errors.New("checkout not bootstrapped")
	}
	head, err := c.repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

// Refresh brings the checkout up to date and parses every committed
// SRCINFO in it.
func (c *Checkout) Refresh(ctx context.Context) ([]*types.SrcInfoPackage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.open(ctx); err != nil {
		return nil, err
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return nil, err
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: "origin", Force: true})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, err
	}

	head, err := c.repo.Head()
	if err != nil {
		return nil, err
	}
	date := ""
	if commit, err := c.repo.CommitObject(head.Hash()); err == nil {
		date = commit.Committer.When.UTC().Format("2006-01-02 15:04:05")
	}

	entries, err := os.ReadDir(c.Path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var result []*types.SrcInfoPackage
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(c.Path, name, ".SRCINFO"))
		if err != nil {
			continue
		}
		result = append(result,
			types.ParseSrcInfo(string(data), c.Repo, c.URL, name, date)...)
	}
	c.l.Debug("parsed recipe checkout", "rev", head.Hash().String(), "sections", len(result))
	return result, nil
}
