package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDepends(t *testing.T) {
	d := SplitDepends([]string{"gcc-libs>=12.1", "zlib", "zlib=1.2.13"})
	assert.Equal(t, []string{"gcc-libs", "zlib"}, d.Names())
	assert.True(t, d["gcc-libs"].Contains(">=12.1"))
	assert.True(t, d["zlib"].Contains(""))
	assert.True(t, d["zlib"].Contains("=1.2.13"))
}

func TestSplitOptDepends(t *testing.T) {
	d := SplitOptDepends([]string{"foo: bar"})
	assert.Equal(t, []string{"foo"}, d.Names())
	assert.True(t, d["foo"].Contains("bar"))

	d = SplitOptDepends([]string{"foo: bar", "foo: quux"})
	assert.Equal(t, 2, d["foo"].Cardinality())

	d = SplitOptDepends([]string{"foobar"})
	assert.Equal(t, 0, d["foobar"].Cardinality())

	d = SplitOptDepends([]string{"foobar:"})
	assert.Equal(t, 0, d["foobar"].Cardinality())
}

func TestBaseFromDesc(t *testing.T) {
	d := map[string][]string{"%NAME%": {"foo"}, "%BASE%": {"foobase"}}
	assert.Equal(t, "foobase", BaseFromDesc(d, "msys"))

	d = map[string][]string{"%NAME%": {"foo"}}
	assert.Equal(t, "foo", BaseFromDesc(d, "msys"))

	d = map[string][]string{"%NAME%": {"mingw-w64-x86_64-gtk3"}}
	assert.Equal(t, "mingw-w64-gtk3", BaseFromDesc(d, "mingw64"))
}

func TestPackageKeyCompare(t *testing.T) {
	a := PackageKey{Repo: "mingw64", Name: "a"}
	b := PackageKey{Repo: "mingw64", Name: "b"}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))

	c := PackageKey{Repo: "msys", Name: "a"}
	assert.Equal(t, -1, a.Compare(c), "repo orders before name")
}

func TestNewBinaryPackage(t *testing.T) {
	repo := Repository{
		Name:        "ucrt64",
		DownloadURL: "https://mirror.msys2.org/mingw/ucrt64",
	}
	d := map[string][]string{
		"%NAME%":      {"mingw-w64-ucrt-x86_64-zlib"},
		"%VERSION%":   {"1.2.13-1"},
		"%FILENAME%":  {"mingw-w64-ucrt-x86_64-zlib-1.2.13-1-any.pkg.tar.zst"},
		"%ARCH%":      {"any"},
		"%BUILDDATE%": {"1674000000"},
		"%DEPENDS%":   {"mingw-w64-ucrt-x86_64-gcc-libs"},
	}
	p := NewBinaryPackage(d, "mingw-w64-zlib", repo)
	assert.Equal(t, "mingw-w64-ucrt-x86_64-zlib", p.Name)
	assert.Equal(t, "mingw-w64-zlib", p.Base)
	assert.Equal(t, "1.2.13-1", p.Version)
	assert.Equal(t, int64(1674000000), p.BuildDate)
	assert.Equal(t,
		"https://mirror.msys2.org/mingw/ucrt64/mingw-w64-ucrt-x86_64-zlib-1.2.13-1-any.pkg.tar.zst",
		p.FileURL)
	assert.Equal(t, []string{"mingw-w64-ucrt-x86_64-gcc-libs"}, p.Depends.Names())
}

func TestSourceVersion(t *testing.T) {
	s := NewSource("foo")
	s.AddPackage(&BinaryPackage{Name: "foo", Repo: "msys", Version: "1.0-1"})
	s.AddPackage(&BinaryPackage{Name: "foo", Repo: "ucrt64", Version: "2.0-1"})
	assert.Equal(t, "2.0-1", s.Version())
	assert.Equal(t, []string{"msys", "ucrt64"}, s.Repos())
}
