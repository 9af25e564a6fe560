// Package queue computes which build recipes are out of date or
// missing from the binary repositories, and in which order they
// should be rebuilt given their build time dependencies.
package queue

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/msys2/msys2-web/pkg/snapshot"
	"github.com/msys2/msys2-web/pkg/types"
	"github.com/msys2/msys2-web/pkg/vercmp"
)

// A QueueBuild is the per-repository slice of a queue entry: the
// packages one repo gets out of the build, and the already queued
// packages the build depends on, grouped by the repo providing them.
type QueueBuild struct {
	Packages []string            `json:"packages"`
	Depends  map[string][]string `json:"depends"`
	New      bool                `json:"new"`
}

// A QueueEntry is one build unit in the resolved queue: a single
// recipe checkout that may produce packages for several repos.
type QueueEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	// VersionRepo is null when no built version exists in any repo
	// yet.
	VersionRepo *string               `json:"version_repo"`
	RepoURL     string                `json:"repo_url"`
	RepoPath    string                `json:"repo_path"`
	Source      bool                  `json:"source"`
	Builds      map[string]QueueBuild `json:"builds"`
}

// A Resolver turns a snapshot into an ordered build queue.  It holds
// no state between calls; every invocation recomputes from scratch.
type Resolver struct {
	l hclog.Logger

	// BaseDepends is folded into every unit's dependency closure.
	// The MSYS2 toolchain groups are needed by every build even
	// though no recipe declares them.
	BaseDepends []string
}

func NewResolver(l hclog.Logger) *Resolver {
	return &Resolver{
		l:           l.Named("queue"),
		BaseDepends: []string{"base", "base-devel"},
	}
}

// srcinfosToBuild collects the recipe sections that are newer than
// their binary package, plus the ones with no binary package at all.
// The second return value holds the pkgnames considered genuinely
// new, i.e. neither present nor replacing anything present.
func (r *Resolver) srcinfosToBuild(snap *snapshot.Snapshot) ([]*types.SrcInfoPackage, mapset.Set[string]) {
	var srcinfos []*types.SrcInfoPackage

	// packages that should be updated
	for _, s := range snap.SortedSources() {
		for _, p := range s.SortedPackages() {
			si, ok := snap.SourceInfos[p.Name]
			if !ok {
				continue
			}
			if !vercmp.IsNewerThan(si.BuildVersion(), p.Version) {
				continue
			}
			srcinfos = append(srcinfos, si)
		}
	}

	// packages that only exist in git
	notInRepo := make(map[string]*types.SrcInfoPackage)
	replacesNotInRepo := mapset.NewSet[string]()
	for name, si := range snap.SourceInfos {
		notInRepo[name] = si
		if si.Replaces != nil {
			replacesNotInRepo = replacesNotInRepo.Union(si.Replaces)
		}
	}
	for _, s := range snap.Sources {
		for _, p := range s.Packages {
			delete(notInRepo, p.Name)
			replacesNotInRepo.Remove(p.Name)
		}
	}

	markedNew := mapset.NewSet[string]()
	names := make([]string, 0, len(notInRepo))
	for name := range notInRepo {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		si := notInRepo[name]
		srcinfos = append(srcinfos, si)
		// A package is only "new" if it also doesn't replace
		// anything already in the repo; otherwise a failure to
		// build it would still be a regression.
		if si.Replaces == nil || replacesNotInRepo.IsSuperset(si.Replaces) {
			markedNew.Add(si.PkgName)
		}
	}

	return srcinfos, markedNew
}

// transitiveDepends is the closure over run time dependencies,
// resolving every name through the snapshot's provides indexes.  The
// recipe tree is the preferred truth; names only known to the binary
// repos fall back to their declared depends there.
func (r *Resolver) transitiveDepends(snap *snapshot.Snapshot, seeds mapset.Set[string]) mapset.Set[string] {
	todo := seeds.Clone()
	done := mapset.NewSet[string]()
	for todo.Cardinality() > 0 {
		name, _ := todo.Pop()
		name = snap.ResolveName(name)
		if done.Contains(name) {
			continue
		}
		done.Add(name)
		if si, ok := snap.SourceInfos[name]; ok {
			for dep := range si.Depends {
				todo.Add(dep)
			}
		} else if p, ok := snap.Binary(name); ok {
			for dep := range p.Depends {
				todo.Add(dep)
			}
		}
	}
	return done
}

// transitiveMakeDepends seeds the closure with the declared depends
// and makedepends of the packages to build.  The seeds themselves are
// not resolved: we want the real dependencies of the recipe even if
// some of its names are being replaced.
func (r *Resolver) transitiveMakeDepends(snap *snapshot.Snapshot, packages []string) mapset.Set[string] {
	todo := mapset.NewSet[string]()
	for _, name := range packages {
		si, ok := snap.SourceInfos[name]
		if !ok {
			continue
		}
		for dep := range si.Depends {
			todo.Add(dep)
		}
		for dep := range si.MakeDepends {
			todo.Add(dep)
		}
	}
	return r.transitiveDepends(snap, todo)
}

// BuildQueue resolves the complete ordered build queue for one
// snapshot.  An empty snapshot yields an empty queue.
func (r *Resolver) BuildQueue(snap *snapshot.Snapshot) []QueueEntry {
	srcinfos, markedNew := r.srcinfosToBuild(snap)

	// group into build units by recipe checkout
	unitOf := make(map[buildKey]*buildUnit)
	var units []*buildUnit
	for _, si := range srcinfos {
		key := buildKey{si.RepoURL, si.RepoPath}
		u, ok := unitOf[key]
		if !ok {
			u = newBuildUnit(key)
			unitOf[key] = u
			units = append(units, u)
		}
		u.add(si, markedNew.Contains(si.PkgName), snap)
	}

	allPackages := mapset.NewSet[string]()
	repoMapping := make(map[string]string)
	for _, u := range units {
		allPackages = allPackages.Union(u.packages)
		for _, si := range u.srcinfos {
			repoMapping[si.PkgName] = si.Repo
		}
	}

	baseSeeds := mapset.NewSet(r.BaseDepends...)
	for _, u := range units {
		deps := r.transitiveMakeDepends(snap, u.sortedPackages())
		deps = deps.Union(r.transitiveDepends(snap, baseSeeds))
		// limit to what is queued at all, minus the unit's own
		// outputs: an internal cycle is not an external dependency
		deps = deps.Intersect(allPackages)
		deps = deps.Difference(u.packages)
		u.makedepends = deps
		u.finalize()
	}

	ordered := orderUnits(units)
	return r.assemble(ordered, repoMapping)
}

// assemble re-expresses each ordered unit's dependencies as the
// already ordered units providing them, grouped by target repo.
// Dependencies on units later in the queue are unknown at that point
// in the build and get dropped, an accepted limitation under cycles.
func (r *Resolver) assemble(ordered []*buildUnit, repoMapping map[string]string) []QueueEntry {
	pos := make(map[*buildUnit]int, len(ordered))
	producer := make(map[string]*buildUnit)
	for i, u := range ordered {
		pos[u] = i
		for _, name := range u.sortedPackages() {
			producer[name] = u
		}
	}

	groupByRepo := func(names []string) map[string][]string {
		grouped := make(map[string][]string)
		for _, name := range names {
			repo := repoMapping[name]
			grouped[repo] = append(grouped[repo], name)
		}
		for _, g := range grouped {
			sort.Strings(g)
		}
		return grouped
	}

	entries := make([]QueueEntry, 0, len(ordered))
	for i, u := range ordered {
		var deps []string
		for _, name := range sortedSlice(u.makedepends) {
			pu, ok := producer[name]
			if !ok || pu == u || pos[pu] >= i {
				continue
			}
			deps = append(deps, name)
		}
		depsGrouped := groupByRepo(deps)

		builds := make(map[string]QueueBuild)
		for repo, buildPackages := range groupByRepo(u.sortedPackages()) {
			buildDepends := make(map[string][]string)
			for depRepo, names := range depsGrouped {
				// a build can only consume packages from its own
				// repo or from the msys base environment
				if depRepo == repo || depRepo == "msys" {
					buildDepends[depRepo] = names
				}
			}
			builds[repo] = QueueBuild{
				Packages: buildPackages,
				Depends:  buildDepends,
				New:      u.isNewFor(repo),
			}
		}

		var versionRepo *string
		if u.versionRepo != "" {
			versionRepo = &u.versionRepo
		}

		first := u.srcinfos[0]
		entries = append(entries, QueueEntry{
			Name:        first.PkgBase,
			Version:     first.BuildVersion(),
			VersionRepo: versionRepo,
			RepoURL:     u.key.repoURL,
			RepoPath:    u.key.repoPath,
			Source:      u.needsSource,
			Builds:      builds,
		})
	}
	return entries
}

func sortedSlice(set mapset.Set[string]) []string {
	out := set.ToSlice()
	sort.Strings(out)
	return out
}
