package types

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

func sortStrings(s []string) { sort.Strings(s) }

// A PackageKey identifies a binary package globally.  Keys order by
// field tuple, which keeps every walk over a package map
// deterministic.
type PackageKey struct {
	Repo    string
	Variant string
	Name    string
	Arch    string
	FileURL string
}

// Compare imposes a total order over keys by comparing the fields in
// declaration order.
func (k PackageKey) Compare(o PackageKey) int {
	pairs := [][2]string{
		{k.Repo, o.Repo},
		{k.Variant, o.Variant},
		{k.Name, o.Name},
		{k.Arch, o.Arch},
		{k.FileURL, o.FileURL},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// A BinaryPackage is one installable package as described by a
// pacman files database entry.  It is owned by exactly one Source.
type BinaryPackage struct {
	Name        string
	Base        string
	Version     string
	Desc        string
	URL         string
	Repo        string
	RepoVariant string
	Arch        string
	Filename    string
	FileURL     string
	BuildDate   int64

	Depends      DepMap
	MakeDepends  DepMap
	OptDepends   DepMap
	CheckDepends DepMap
	Provides     DepMap
	Conflicts    DepMap
	Replaces     DepMap
}

// Key returns the globally unique identity of this package.
func (p *BinaryPackage) Key() PackageKey {
	return PackageKey{p.Repo, p.RepoVariant, p.Name, p.Arch, p.FileURL}
}

// NewBinaryPackage builds a package from a parsed desc block.
// Missing optional fields stay at their zero values; a desc lacking
// even the mandatory fields still yields a usable package rather than
// an error, matching how pacman treats sparse entries.
func NewBinaryPackage(d map[string][]string, base string, repo Repository) *BinaryPackage {
	first := func(key string) string {
		if v, ok := d[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	p := &BinaryPackage{
		Name:        first("%NAME%"),
		Base:        base,
		Version:     first("%VERSION%"),
		Desc:        first("%DESC%"),
		URL:         first("%URL%"),
		Repo:        repo.Name,
		RepoVariant: repo.Variant,
		Arch:        first("%ARCH%"),
		Filename:    first("%FILENAME%"),

		Depends:      SplitDepends(d["%DEPENDS%"]),
		MakeDepends:  SplitDepends(d["%MAKEDEPENDS%"]),
		OptDepends:   SplitOptDepends(d["%OPTDEPENDS%"]),
		CheckDepends: SplitDepends(d["%CHECKDEPENDS%"]),
		Provides:     SplitDepends(d["%PROVIDES%"]),
		Conflicts:    SplitDepends(d["%CONFLICTS%"]),
		Replaces:     SplitDepends(d["%REPLACES%"]),
	}
	p.FileURL = strings.TrimRight(repo.DownloadURL, "/") + "/" + url.PathEscape(p.Filename)
	if bd, err := strconv.ParseInt(first("%BUILDDATE%"), 10, 64); err == nil {
		p.BuildDate = bd
	}
	return p
}

// BaseFromDesc derives the pkgbase for a desc block.  Older databases
// lack %BASE%, in which case the mingw naming convention is applied.
func BaseFromDesc(d map[string][]string, repo string) string {
	if v, ok := d["%BASE%"]; ok && len(v) > 0 {
		return v[0]
	}
	name := ""
	if v, ok := d["%NAME%"]; ok && len(v) > 0 {
		name = v[0]
	}
	if RepoIsMingw(repo) {
		parts := strings.SplitN(name, "-", 4)
		return "mingw-w64-" + parts[len(parts)-1]
	}
	return name
}
