package fetch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"

	"github.com/msys2/msys2-web/pkg/snapshot"
	"github.com/msys2/msys2-web/pkg/types"
)

// A SrcInfoSource yields recipe sections from somewhere other than
// the published srcinfo cache, e.g. a local git checkout.
type SrcInfoSource interface {
	Refresh(ctx context.Context) ([]*types.SrcInfoPackage, error)
}

// A Refresher drives the periodic snapshot rebuild.  One refresh
// fetches all upstream inputs in parallel, builds a fresh snapshot
// and publishes it; any fetch failure abandons the cycle and leaves
// the previous snapshot live.
type Refresher struct {
	l       hclog.Logger
	fetcher *Fetcher
	pub     *snapshot.Publisher

	repos       []types.Repository
	srcinfoURLs []string
	gitSource   SrcInfoSource

	interval time.Duration
	rl       ratelimit.Limiter

	// trigger is edge triggered: requests arriving while a refresh
	// is already pending collapse into it.
	trigger chan struct{}
}

// NewRefresher wires a refresher for the given repositories and
// srcinfo inputs.  rate is the maximum number of refreshes per
// window, no matter how often triggers arrive.
func NewRefresher(l hclog.Logger, fetcher *Fetcher, pub *snapshot.Publisher,
	repos []types.Repository, srcinfoURLs []string,
	interval time.Duration, rate int, window time.Duration) *Refresher {
	return &Refresher{
		l:           l.Named("refresh"),
		fetcher:     fetcher,
		pub:         pub,
		repos:       repos,
		srcinfoURLs: srcinfoURLs,
		interval:    interval,
		rl:          ratelimit.New(rate, ratelimit.Per(window)),
		trigger:     make(chan struct{}, 1),
	}
}

// SetSrcInfoSource switches recipe input from the published srcinfo
// cache to the given source.
func (r *Refresher) SetSrcInfoSource(s SrcInfoSource) {
	r.gitSource = s
}

// Trigger requests a refresh as soon as the rate limit allows.  It
// never blocks; triggering while one is already queued is a no-op.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once immediately, then loops until the context is
// cancelled, waking up on the timer or on Trigger.
func (r *Refresher) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		if !r.waitTurn(ctx) {
			return
		}
		if err := r.Once(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.l.Error("refresh failed, keeping previous snapshot", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		case <-r.trigger:
			r.l.Debug("refresh triggered")
		}
	}
}

// waitTurn blocks until the rate limiter grants a token.  It returns
// false when the context is cancelled first, so shutdown never waits
// out a rate window.
func (r *Refresher) waitTurn(ctx context.Context) bool {
	ready := make(chan struct{})
	go func() {
		r.rl.Take()
		close(ready)
	}()
	select {
	case <-ctx.Done():
		return false
	case <-ready:
		return true
	}
}

// Once performs a single refresh cycle.
func (r *Refresher) Once(ctx context.Context) error {
	start := time.Now()

	var mu sync.Mutex
	sourceMaps := make([]map[string]*types.Source, len(r.repos))
	var srcinfos []*types.SrcInfoPackage

	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range r.repos {
		i, repo := i, repo
		g.Go(func() error {
			data, err := r.fetcher.Get(gctx, repo.FilesURL())
			if err != nil {
				return err
			}
			sources, err := ParseFilesDB(data, repo)
			if err != nil {
				return err
			}
			r.l.Debug("loaded repository", "repo", repo.Name, "sources", len(sources))
			sourceMaps[i] = sources
			return nil
		})
	}

	if r.gitSource != nil {
		g.Go(func() error {
			sis, err := r.gitSource.Refresh(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			srcinfos = append(srcinfos, sis...)
			mu.Unlock()
			return nil
		})
	} else {
		for _, url := range sortedURLs(r.srcinfoURLs) {
			url := url
			g.Go(func() error {
				data, err := r.fetcher.Get(gctx, url)
				if err != nil {
					return err
				}
				sis, err := ParseSrcInfoCache(data)
				if err != nil {
					return err
				}
				mu.Lock()
				srcinfos = append(srcinfos, sis...)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// stable input order for the first-seen-wins duplicate handling
	sort.SliceStable(srcinfos, func(i, j int) bool {
		if srcinfos[i].RepoURL != srcinfos[j].RepoURL {
			return srcinfos[i].RepoURL < srcinfos[j].RepoURL
		}
		if srcinfos[i].RepoPath != srcinfos[j].RepoPath {
			return srcinfos[i].RepoPath < srcinfos[j].RepoPath
		}
		return srcinfos[i].PkgName < srcinfos[j].PkgName
	})

	snap := snapshot.New(MergeSources(sourceMaps...), srcinfos, r.l)
	r.pub.Publish(snap)
	r.l.Info("refreshed snapshot",
		"sources", len(snap.Sources),
		"sourceinfos", len(snap.SourceInfos),
		"took", time.Since(start))
	return nil
}

func sortedURLs(urls []string) []string {
	out := make([]string, len(urls))
	copy(out, urls)
	sort.Strings(out)
	return out
}
