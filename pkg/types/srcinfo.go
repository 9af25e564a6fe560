package types

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// A SrcInfoPackage is one pkgname section of a parsed SRCINFO, the
// machine readable dump of a build recipe.  Several of them may share
// a pkgbase; everything originating from the same (RepoURL, RepoPath)
// is built together.
type SrcInfoPackage struct {
	PkgBase string
	PkgName string
	PkgVer  string
	PkgRel  string
	Epoch   string

	Repo     string
	RepoURL  string
	RepoPath string
	Date     string

	Depends     DepMap
	MakeDepends DepMap
	Provides    DepMap
	Conflicts   DepMap
	Replaces    mapset.Set[string]
	Sources     []string
}

// BuildVersion formats the version this recipe would build, in the
// same epoch~pkgver-pkgrel form the binary repo uses.
func (s *SrcInfoPackage) BuildVersion() string {
	version := fmt.Sprintf("%s-%s", s.PkgVer, s.PkgRel)
	if s.Epoch != "" {
		version = fmt.Sprintf("%s~%s", s.Epoch, version)
	}
	return version
}

func (s *SrcInfoPackage) String() string {
	return fmt.Sprintf("<SrcInfoPackage %s %s>", s.PkgName, s.BuildVersion())
}

// ParseSrcInfo parses a full SRCINFO text into one package per
// pkgname section.  Keys set on the pkgbase section are inherited by
// every pkgname section that does not override them.
func ParseSrcInfo(srcinfo, repo, repoURL, repoPath, date string) []*SrcInfoPackage {
	base := make(map[string][]string)
	sub := make(map[string]map[string][]string)
	var order []string

	var current map[string][]string
	for _, line := range strings.Split(srcinfo, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		i := strings.Index(line, " =")
		if i < 0 {
			continue
		}
		key := line[:i]
		value := strings.TrimSpace(line[i+2:])

		if current == nil && key == "pkgbase" {
			current = base
		} else if key == "pkgname" {
			if _, ok := sub[value]; !ok {
				order = append(order, value)
			}
			sub[value] = make(map[string][]string)
			current = sub[value]
		}
		if current == nil {
			continue
		}
		if value != "" {
			current[key] = append(current[key], value)
		} else if _, ok := current[key]; !ok {
			current[key] = nil
		}
	}

	// everything not set in a package section comes from the base
	for bkey, bvalue := range base {
		for _, items := range sub {
			if _, ok := items[bkey]; !ok {
				items[bkey] = bvalue
			}
		}
	}

	first := func(m map[string][]string, key string) string {
		if v, ok := m[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	var packages []*SrcInfoPackage
	for _, name := range order {
		pkg := sub[name]
		p := &SrcInfoPackage{
			PkgBase:  first(pkg, "pkgbase"),
			PkgName:  first(pkg, "pkgname"),
			PkgVer:   first(pkg, "pkgver"),
			PkgRel:   first(pkg, "pkgrel"),
			Epoch:    first(pkg, "epoch"),
			Repo:     repo,
			RepoURL:  repoURL,
			RepoPath: repoPath,
			Date:     date,

			Depends:     SplitDepends(pkg["depends"]),
			MakeDepends: SplitDepends(pkg["makedepends"]),
			Provides:    SplitDepends(pkg["provides"]),
			Conflicts:   SplitDepends(pkg["conflicts"]),
			Replaces:    mapset.NewSet(pkg["replaces"]...),
			Sources:     pkg["source"],
		}
		packages = append(packages, p)
	}
	return packages
}
