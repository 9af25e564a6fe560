package types

import (
	"sort"

	"github.com/msys2/msys2-web/pkg/vercmp"
)

// A Source groups the binary packages built from one pkgbase.
type Source struct {
	Name     string
	Packages map[PackageKey]*BinaryPackage
}

func NewSource(name string) *Source {
	return &Source{
		Name:     name,
		Packages: make(map[PackageKey]*BinaryPackage),
	}
}

// AddPackage attaches a binary package to this source.  A later
// package with the same key wins, which only happens when the same
// database entry is parsed twice.
func (s *Source) AddPackage(p *BinaryPackage) {
	s.Packages[p.Key()] = p
}

// SortedPackages returns the packages ordered by key.
func (s *Source) SortedPackages() []*BinaryPackage {
	keys := make([]PackageKey, 0, len(s.Packages))
	for k := range s.Packages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	pkgs := make([]*BinaryPackage, len(keys))
	for i, k := range keys {
		pkgs[i] = s.Packages[k]
	}
	return pkgs
}

// Version is the newest version among the packages of this source.
func (s *Source) Version() string {
	version := ""
	for _, p := range s.Packages {
		if version == "" || vercmp.IsNewerThan(p.Version, version) {
			version = p.Version
		}
	}
	return version
}

// Repos lists the repositories this source has packages in.
func (s *Source) Repos() []string {
	seen := make(map[string]bool)
	var repos []string
	for _, p := range s.Packages {
		if !seen[p.Repo] {
			seen[p.Repo] = true
			repos = append(repos, p.Repo)
		}
	}
	sortStrings(repos)
	return repos
}

// Date is the build date of the newest package.
func (s *Source) Date() int64 {
	var date int64
	for _, p := range s.Packages {
		if p.BuildDate > date {
			date = p.BuildDate
		}
	}
	return date
}
