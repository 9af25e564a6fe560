package types

import (
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DepType classifies an edge in the reverse dependency index.
type DepType int

const (
	DepNormal DepType = iota
	DepMake
	DepOptional
	DepCheck
)

func (d DepType) String() string {
	switch d {
	case DepNormal:
		return "depends"
	case DepMake:
		return "makedepends"
	case DepOptional:
		return "optdepends"
	case DepCheck:
		return "checkdepends"
	default:
		return "unknown"
	}
}

// DepMap maps a dependency name to the set of version constraint
// strings declared against it, e.g. ">=1.2.0".
type DepMap map[string]mapset.Set[string]

// Names returns the dependency names in sorted order.
func (d DepMap) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sortStrings(names)
	return names
}

var constraintRe = regexp.MustCompile(`[<>=]+`)

// SplitDepends turns raw depend entries like "gcc-libs>=12.1" into a
// DepMap.  The same name may appear multiple times with different
// constraints.
func SplitDepends(deps []string) DepMap {
	r := make(DepMap)
	for _, d := range deps {
		name := d
		constraint := ""
		if loc := constraintRe.FindStringIndex(d); loc != nil {
			name = d[:loc[0]]
			constraint = d[loc[0]:]
		}
		name = strings.TrimSpace(name)
		constraint = strings.TrimSpace(constraint)
		set, ok := r[name]
		if !ok {
			set = mapset.NewSet[string]()
			r[name] = set
		}
		set.Add(constraint)
	}
	return r
}

// SplitOptDepends parses optional dependency entries of the form
// "name: reason", collecting the reasons per name.
func SplitOptDepends(deps []string) DepMap {
	r := make(DepMap)
	for _, d := range deps {
		name := strings.TrimSpace(d)
		reason := ""
		if i := strings.Index(d, ":"); i >= 0 {
			name = strings.TrimSpace(d[:i])
			reason = strings.TrimSpace(d[i+1:])
		}
		set, ok := r[name]
		if !ok {
			set = mapset.NewSet[string]()
			r[name] = set
		}
		if reason != "" {
			set.Add(reason)
		}
	}
	return r
}
