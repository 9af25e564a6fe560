package queue

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/msys2/msys2-web/pkg/snapshot"
	"github.com/msys2/msys2-web/pkg/types"
)

// A buildKey identifies one recipe checkout.  Everything sharing it
// is built in one go, no matter how many repos the output lands in.
type buildKey struct {
	repoURL  string
	repoPath string
}

// A buildUnit is one queued recipe build with its produced pkgnames
// and its (restricted) dependency closure.
type buildUnit struct {
	key      buildKey
	srcinfos []*types.SrcInfoPackage

	packages    mapset.Set[string]
	makedepends mapset.Set[string]

	// newByRepo records, per target repo, whether every produced
	// section was marked new.  One pre-existing pkgname makes the
	// whole repo build an update.
	newByRepo map[string]bool

	versionRepo string
	needsSource bool

	// cached after finalize, used by the ordering loop
	depsCount  int
	sortedPkgs []string
}

func newBuildUnit(key buildKey) *buildUnit {
	return &buildUnit{
		key:       key,
		packages:  mapset.NewSet[string](),
		newByRepo: make(map[string]bool),
	}
}

func (u *buildUnit) add(si *types.SrcInfoPackage, isNew bool, snap *snapshot.Snapshot) {
	u.srcinfos = append(u.srcinfos, si)
	u.packages.Add(si.PkgName)

	repoVersion := ""
	if src, ok := snap.Sources[si.PkgBase]; ok {
		repoVersion = src.Version()
	}
	if u.versionRepo == "" {
		u.versionRepo = repoVersion
	}
	// a matching base/version in the repo means a source package
	// was already uploaded for it
	if repoVersion != si.BuildVersion() {
		u.needsSource = true
	}

	if seen, ok := u.newByRepo[si.Repo]; ok {
		u.newByRepo[si.Repo] = seen && isNew
	} else {
		u.newByRepo[si.Repo] = isNew
	}
}

func (u *buildUnit) isNewFor(repo string) bool {
	return u.newByRepo[repo]
}

func (u *buildUnit) sortedPackages() []string {
	if u.sortedPkgs == nil {
		u.sortedPkgs = sortedSlice(u.packages)
	}
	return u.sortedPkgs
}

// finalize caches the ordering key components once the restricted
// dependency set is known.
func (u *buildUnit) finalize() {
	u.depsCount = u.makedepends.Cardinality()
	u.sortedPkgs = nil
	u.sortedPackages()
}

// unitLess is the seeding and tie breaking order: fewer dependencies
// first, then the lexically smallest produced names.
func unitLess(a, b *buildUnit) bool {
	if a.depsCount != b.depsCount {
		return a.depsCount < b.depsCount
	}
	ap, bp := a.sortedPackages(), b.sortedPackages()
	n := len(ap)
	if len(bp) < n {
		n = len(bp)
	}
	for i := 0; i < n; i++ {
		if ap[i] != bp[i] {
			return ap[i] < bp[i]
		}
	}
	return len(ap) < len(bp)
}
