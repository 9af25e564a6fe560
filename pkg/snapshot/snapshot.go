// Package snapshot holds the immutable view of the repository state
// that every query runs against.  A snapshot is built wholesale by a
// refresh cycle and never mutated afterwards; readers share it freely.
package snapshot

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/msys2/msys2-web/pkg/types"
)

// A Snapshot is one consistent view of the binary repositories and
// the recipe tree, plus the indexes derived from them.
type Snapshot struct {
	// Sources maps pkgbase to the group of binary packages built
	// from it.
	Sources map[string]*types.Source

	// SourceInfos maps pkgname to its recipe section.
	SourceInfos map[string]*types.SrcInfoPackage

	// binaries maps a binary package name to one representative
	// package (the key-smallest one across repos).
	binaries map[string]*types.BinaryPackage

	// provides and replaces map a virtual or replaced name to the
	// pkgname of the recipe claiming it.
	provides map[string]string
	replaces map[string]string

	// rdeps maps a package key to everything depending on it,
	// virtual names already resolved.
	rdeps map[types.PackageKey]map[*types.BinaryPackage]mapset.Set[types.DepType]

	fingerprint string
}

// Empty returns the snapshot served before the first successful
// refresh.  All queries against it yield empty results.
func Empty() *Snapshot {
	return New(nil, nil, hclog.NewNullLogger())
}

// New builds a snapshot from grouped binary packages and parsed
// recipe sections.  The srcinfos slice is walked in order; the first
// section seen for a pkgname wins, later ones are a data error that
// gets logged and dropped.
func New(sources map[string]*types.Source, srcinfos []*types.SrcInfoPackage, l hclog.Logger) *Snapshot {
	s := &Snapshot{
		Sources:     make(map[string]*types.Source, len(sources)),
		SourceInfos: make(map[string]*types.SrcInfoPackage, len(srcinfos)),
		binaries:    make(map[string]*types.BinaryPackage),
		provides:    make(map[string]string),
		replaces:    make(map[string]string),
		rdeps:       make(map[types.PackageKey]map[*types.BinaryPackage]mapset.Set[types.DepType]),
	}
	for name, src := range sources {
		s.Sources[name] = src
	}

	for _, si := range srcinfos {
		if prev, ok := s.SourceInfos[si.PkgName]; ok {
			l.Warn("duplicate pkgname across build units",
				"pkgname", si.PkgName, "kept", prev.PkgBase, "dropped", si.PkgBase)
			continue
		}
		s.SourceInfos[si.PkgName] = si
	}

	s.buildBinaryIndex()
	s.buildProvidesIndex()
	s.buildRDeps()
	return s
}

// SortedSources returns the sources ordered by pkgbase.
func (s *Snapshot) SortedSources() []*types.Source {
	names := make([]string, 0, len(s.Sources))
	for name := range s.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*types.Source, len(names))
	for i, name := range names {
		out[i] = s.Sources[name]
	}
	return out
}

// SortedSourceInfos returns the recipe sections ordered by pkgname.
func (s *Snapshot) SortedSourceInfos() []*types.SrcInfoPackage {
	names := make([]string, 0, len(s.SourceInfos))
	for name := range s.SourceInfos {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*types.SrcInfoPackage, len(names))
	for i, name := range names {
		out[i] = s.SourceInfos[name]
	}
	return out
}

// Binary returns one binary package with the given name, if any repo
// carries it.
func (s *Snapshot) Binary(name string) (*types.BinaryPackage, bool) {
	p, ok := s.binaries[name]
	return p, ok
}

// ResolveName maps a dependency name to the pkgname of the recipe
// that satisfies it: a recipe that both provides and replaces the
// name wins, then an exact pkgname match, then any provider.  Unknown
// names map to themselves.
func (s *Snapshot) ResolveName(name string) string {
	prov, hasProv := s.provides[name]
	if repl, hasRepl := s.replaces[name]; hasRepl && hasProv && prov == repl {
		return prov
	}
	if _, ok := s.SourceInfos[name]; ok {
		return name
	}
	if hasProv {
		return prov
	}
	return name
}

// ReverseDepends returns every binary package depending on p, by
// name or through one of its provides.
func (s *Snapshot) ReverseDepends(p *types.BinaryPackage) map[*types.BinaryPackage]mapset.Set[types.DepType] {
	return s.rdeps[p.Key()]
}

// Fingerprint is an opaque token assigned at publish time.  It only
// ever serves cache invalidation.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

func (s *Snapshot) buildBinaryIndex() {
	for _, src := range s.Sources {
		for _, p := range src.Packages {
			cur, ok := s.binaries[p.Name]
			if !ok || p.Key().Compare(cur.Key()) < 0 {
				s.binaries[p.Name] = p
			}
		}
	}
}

// buildProvidesIndex precomputes the two-level name resolution used
// by the build queue: exact pkgname lookups hit SourceInfos directly,
// everything else goes through these maps.  Ties resolve to the
// lexically smallest providing pkgname.
func (s *Snapshot) buildProvidesIndex() {
	for _, si := range s.SortedSourceInfos() {
		for prov := range si.Provides {
			if _, ok := s.provides[prov]; !ok {
				s.provides[prov] = si.PkgName
			}
		}
		for _, repl := range sortedSlice(si.Replaces) {
			if _, ok := s.replaces[repl]; !ok {
				s.replaces[repl] = si.PkgName
			}
		}
	}
}

func (s *Snapshot) buildRDeps() {
	// first keyed by plain dependency name
	byName := make(map[string]map[*types.BinaryPackage]mapset.Set[types.DepType])
	record := func(name string, p *types.BinaryPackage, kind types.DepType) {
		m, ok := byName[name]
		if !ok {
			m = make(map[*types.BinaryPackage]mapset.Set[types.DepType])
			byName[name] = m
		}
		set, ok := m[p]
		if !ok {
			set = mapset.NewSet[types.DepType]()
			m[p] = set
		}
		set.Add(kind)
	}

	for _, src := range s.Sources {
		for _, p := range src.Packages {
			for n := range p.Depends {
				record(n, p, types.DepNormal)
			}
			for n := range p.MakeDepends {
				record(n, p, types.DepMake)
			}
			for n := range p.OptDepends {
				record(n, p, types.DepOptional)
			}
			for n := range p.CheckDepends {
				record(n, p, types.DepCheck)
			}
		}
	}

	// then re-key through provides so virtual dependencies land on
	// their real providers
	for _, src := range s.Sources {
		for _, p := range src.Packages {
			merged := make(map[*types.BinaryPackage]mapset.Set[types.DepType])
			merge := func(m map[*types.BinaryPackage]mapset.Set[types.DepType]) {
				for rp, kinds := range m {
					set, ok := merged[rp]
					if !ok {
						set = mapset.NewSet[types.DepType]()
						merged[rp] = set
					}
					set = set.Union(kinds)
					merged[rp] = set
				}
			}
			merge(byName[p.Name])
			for prov := range p.Provides {
				merge(byName[prov])
			}
			if len(merged) > 0 {
				s.rdeps[p.Key()] = merged
			}
		}
	}
}

func sortedSlice(set mapset.Set[string]) []string {
	if set == nil {
		return nil
	}
	out := set.ToSlice()
	sort.Strings(out)
	return out
}
