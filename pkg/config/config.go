// Package config carries the application configuration.  Defaults
// describe the upstream MSYS2 repositories and can be overridden
// from a JSON file.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/msys2/msys2-web/pkg/types"
)

const (
	repoURL     = "https://repo.msys2.org"
	downloadURL = "https://mirror.msys2.org"
)

// NewConfig returns a config object with default structures
// initialized.  The config can be loaded from other sources to
// override the defaults.
func NewConfig() *Config {
	mingw := "https://github.com/msys2/MINGW-packages"
	msys := "https://github.com/msys2/MSYS2-packages"

	return &Config{
		Repos: []types.Repository{
			{Name: "mingw32", PackagePrefix: "mingw-w64-i686-", BasePrefix: "mingw-w64-", URL: repoURL + "/mingw/mingw32", DownloadURL: downloadURL + "/mingw/mingw32", SourceURL: mingw},
			{Name: "mingw64", PackagePrefix: "mingw-w64-x86_64-", BasePrefix: "mingw-w64-", URL: repoURL + "/mingw/mingw64", DownloadURL: downloadURL + "/mingw/mingw64", SourceURL: mingw},
			{Name: "ucrt64", PackagePrefix: "mingw-w64-ucrt-x86_64-", BasePrefix: "mingw-w64-", URL: repoURL + "/mingw/ucrt64", DownloadURL: downloadURL + "/mingw/ucrt64", SourceURL: mingw},
			{Name: "clang64", PackagePrefix: "mingw-w64-clang-x86_64-", BasePrefix: "mingw-w64-", URL: repoURL + "/mingw/clang64", DownloadURL: downloadURL + "/mingw/clang64", SourceURL: mingw},
			{Name: "clang32", PackagePrefix: "mingw-w64-clang-i686-", BasePrefix: "mingw-w64-", URL: repoURL + "/mingw/clang32", DownloadURL: downloadURL + "/mingw/clang32", SourceURL: mingw},
			{Name: "clangarm64", PackagePrefix: "mingw-w64-clang-aarch64-", BasePrefix: "mingw-w64-", URL: repoURL + "/mingw/clangarm64", DownloadURL: downloadURL + "/mingw/clangarm64", SourceURL: mingw},
			{Name: "msys", Variant: "x86_64", URL: repoURL + "/msys/x86_64", DownloadURL: downloadURL + "/msys/x86_64", SourceURL: msys},
		},
		SrcInfoURLs: []string{
			"https://github.com/msys2/MINGW-packages/releases/download/srcinfo-cache/srcinfo.json.gz",
			"https://github.com/msys2/MSYS2-packages/releases/download/srcinfo-cache/srcinfo.json.gz",
		},
		CheckoutDir:        "checkouts",
		Bind:               ":8080",
		UpdateInterval:     types.Duration(5 * time.Minute),
		RefreshesPerWindow: 1,
		RefreshWindow:      types.Duration(time.Minute),
		BaseDepends:        []string{"base", "base-devel"},
	}
}

// LoadFromFile does as the name suggests, and loads the config from
// a file
func (c *Config) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	return dec.Decode(c)
}
