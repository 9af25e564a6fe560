package queue

import (
	"encoding/json"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msys2/msys2-web/pkg/snapshot"
	"github.com/msys2/msys2-web/pkg/types"
)

type testPkg struct {
	name     string
	version  string
	repo     string
	depends  []string
	makedeps []string
}

// testSnapshot builds a snapshot where binaries describes the binary
// repo content and recipes the recipe tree.  Every name is its own
// pkgbase and recipe checkout directory.
func testSnapshot(t *testing.T, binaries, recipes []testPkg) *snapshot.Snapshot {
	t.Helper()

	sources := make(map[string]*types.Source)
	for _, b := range binaries {
		repo := b.repo
		if repo == "" {
			repo = "msys"
		}
		src, ok := sources[b.name]
		if !ok {
			src = types.NewSource(b.name)
			sources[b.name] = src
		}
		src.AddPackage(&types.BinaryPackage{
			Name:    b.name,
			Base:    b.name,
			Repo:    repo,
			Version: b.version,
			FileURL: "https://mirror.invalid/" + repo + "/" + b.name,
			Depends: types.SplitDepends(b.depends),
		})
	}

	var srcinfos []*types.SrcInfoPackage
	for _, r := range recipes {
		repo := r.repo
		if repo == "" {
			repo = "msys"
		}
		repoURL := "https://github.com/msys2/MSYS2-packages"
		if repo != "msys" {
			repoURL = "https://github.com/msys2/MINGW-packages"
		}
		srcinfos = append(srcinfos, &types.SrcInfoPackage{
			PkgBase:     r.name,
			PkgName:     r.name,
			PkgVer:      r.version,
			PkgRel:      "1",
			Repo:        repo,
			RepoURL:     repoURL,
			RepoPath:    r.name,
			Depends:     types.SplitDepends(r.depends),
			MakeDepends: types.SplitDepends(r.makedeps),
		})
	}

	return snapshot.New(sources, srcinfos, hclog.NewNullLogger())
}

func queueNames(entries []QueueEntry) []string {
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func TestBuildQueueEmpty(t *testing.T) {
	r := NewResolver(hclog.NewNullLogger())
	assert.Empty(t, r.BuildQueue(snapshot.Empty()))
}

func TestBuildQueueUpToDate(t *testing.T) {
	snap := testSnapshot(t,
		[]testPkg{{name: "foo", version: "1.0-1"}},
		[]testPkg{{name: "foo", version: "1.0"}},
	)
	r := NewResolver(hclog.NewNullLogger())
	assert.Empty(t, r.BuildQueue(snap))
}

func TestBuildQueueUpdate(t *testing.T) {
	snap := testSnapshot(t,
		[]testPkg{{name: "foo", version: "1.0-1"}},
		[]testPkg{{name: "foo", version: "2.0"}},
	)
	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "foo", e.Name)
	assert.Equal(t, "2.0-1", e.Version)
	require.NotNil(t, e.VersionRepo)
	assert.Equal(t, "1.0-1", *e.VersionRepo)
	assert.Equal(t, "foo", e.RepoPath)
	require.Contains(t, e.Builds, "msys")
	assert.Equal(t, []string{"foo"}, e.Builds["msys"].Packages)
	assert.False(t, e.Builds["msys"].New)
}

func TestBuildQueueDowngradeIgnored(t *testing.T) {
	snap := testSnapshot(t,
		[]testPkg{{name: "foo", version: "2.0-1"}},
		[]testPkg{{name: "foo", version: "1.0"}},
	)
	r := NewResolver(hclog.NewNullLogger())
	assert.Empty(t, r.BuildQueue(snap), "older recipes never queue a build")
}

func TestBuildQueueNewPackage(t *testing.T) {
	snap := testSnapshot(t,
		nil,
		[]testPkg{{name: "bar", version: "1.0"}},
	)
	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Builds["msys"].New)
	assert.True(t, entries[0].Source, "nothing uploaded yet, sources needed")
	assert.Nil(t, entries[0].VersionRepo)

	// no repo version serializes as an explicit null
	raw, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version_repo":null`)
}

func TestBuildQueueReplacementNotNew(t *testing.T) {
	oldbar := types.NewSource("oldbar")
	oldbar.AddPackage(&types.BinaryPackage{
		Name: "oldbar", Base: "oldbar", Repo: "msys", Version: "1.0-1",
		FileURL: "https://mirror.invalid/msys/oldbar",
	})
	// bar replaces oldbar which is still in the repo
	bar := &types.SrcInfoPackage{
		PkgBase: "bar", PkgName: "bar", PkgVer: "1.0", PkgRel: "1",
		Repo: "msys", RepoURL: "https://github.com/msys2/MSYS2-packages", RepoPath: "bar",
		Replaces: mapset.NewSet("oldbar"),
	}
	snap := snapshot.New(map[string]*types.Source{"oldbar": oldbar},
		[]*types.SrcInfoPackage{bar}, hclog.NewNullLogger())

	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	require.Len(t, entries, 1)
	assert.Equal(t, "bar", entries[0].Name)
	assert.False(t, entries[0].Builds["msys"].New,
		"replacing something present is an update, not a new package")
}

func TestBuildQueueOrderAndDepends(t *testing.T) {
	// foo needs bar at build time; bar only exists in git
	snap := testSnapshot(t,
		[]testPkg{{name: "foo", version: "1.0-1"}},
		[]testPkg{
			{name: "foo", version: "2.0", makedeps: []string{"bar"}},
			{name: "bar", version: "1.0"},
		},
	)
	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	require.Equal(t, []string{"bar", "foo"}, queueNames(entries))

	bar, foo := entries[0], entries[1]
	assert.True(t, bar.Builds["msys"].New)
	assert.Empty(t, bar.Builds["msys"].Depends)

	require.Contains(t, foo.Builds, "msys")
	assert.Equal(t, map[string][]string{"msys": {"bar"}}, foo.Builds["msys"].Depends)
}

func TestBuildQueueTransitiveMakeDepends(t *testing.T) {
	// foo's build needs tool, tool runs against lib; all queued
	snap := testSnapshot(t,
		[]testPkg{
			{name: "foo", version: "1.0-1"},
			{name: "tool", version: "1.0-1", depends: []string{"lib"}},
			{name: "lib", version: "1.0-1"},
		},
		[]testPkg{
			{name: "foo", version: "2.0", makedeps: []string{"tool"}},
			{name: "tool", version: "2.0", depends: []string{"lib"}},
			{name: "lib", version: "2.0"},
		},
	)
	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	require.Len(t, entries, 3)

	byName := make(map[string]QueueEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	deps := byName["foo"].Builds["msys"].Depends["msys"]
	assert.ElementsMatch(t, []string{"tool", "lib"}, deps,
		"runtime closure of the makedepends is included")

	names := queueNames(entries)
	assert.Equal(t, []string{"lib", "tool", "foo"}, names)
}

func TestBuildQueueCycle(t *testing.T) {
	snap := testSnapshot(t,
		nil,
		[]testPkg{
			{name: "a", version: "1.0", makedeps: []string{"b"}},
			{name: "b", version: "1.0", makedeps: []string{"a"}},
		},
	)
	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	assert.Equal(t, []string{"a", "b"}, queueNames(entries),
		"a cycle still yields every unit exactly once")
}

func TestBuildQueueThreeCycle(t *testing.T) {
	snap := testSnapshot(t,
		nil,
		[]testPkg{
			{name: "a", version: "1.0", makedeps: []string{"b"}},
			{name: "b", version: "1.0", makedeps: []string{"c"}},
			{name: "c", version: "1.0", makedeps: []string{"a"}},
		},
	)
	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	require.Len(t, entries, 3)
	seen := make(map[string]int)
	for _, e := range entries {
		seen[e.Name]++
	}
	for _, name := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, seen[name])
	}
}

func TestBuildQueueCrossRepoDependsFiltered(t *testing.T) {
	// a ucrt64 build may consume ucrt64 and msys packages, but
	// never packages from a different mingw flavor
	snap := testSnapshot(t,
		[]testPkg{
			{name: "app", version: "1.0-1", repo: "ucrt64"},
		},
		[]testPkg{
			{name: "app", version: "2.0", repo: "ucrt64",
				makedeps: []string{"helper", "other"}},
			{name: "helper", version: "1.0", repo: "msys"},
			{name: "other", version: "1.0", repo: "mingw64"},
		},
	)
	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)

	byName := make(map[string]QueueEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	app, ok := byName["app"]
	require.True(t, ok)
	deps := app.Builds["ucrt64"].Depends
	assert.Contains(t, deps, "msys")
	assert.NotContains(t, deps, "mingw64")
}

func TestBuildQueueSharedCheckout(t *testing.T) {
	// two sections from the same checkout form one entry
	srcinfos := []*types.SrcInfoPackage{
		{
			PkgBase: "libfoo", PkgName: "libfoo", PkgVer: "1.0", PkgRel: "1",
			Repo: "msys", RepoURL: "https://example.invalid/r", RepoPath: "libfoo",
		},
		{
			PkgBase: "libfoo", PkgName: "libfoo-devel", PkgVer: "1.0", PkgRel: "1",
			Repo: "msys", RepoURL: "https://example.invalid/r", RepoPath: "libfoo",
		},
	}
	snap := snapshot.New(nil, srcinfos, hclog.NewNullLogger())

	r := NewResolver(hclog.NewNullLogger())
	entries := r.BuildQueue(snap)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"libfoo", "libfoo-devel"}, entries[0].Builds["msys"].Packages)
}
