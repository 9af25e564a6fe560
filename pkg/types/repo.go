package types

import "strings"

// A Repository is the static description of one binary package
// repository, e.g. mingw64 or msys for x86_64.
type Repository struct {
	Name          string `json:"name"`
	Variant       string `json:"variant"`
	PackagePrefix string `json:"package_prefix"`
	BasePrefix    string `json:"base_prefix"`
	URL           string `json:"url"`
	DownloadURL   string `json:"download_url"`
	SourceURL     string `json:"src_url"`
}

// FilesURL points at the pacman files database for this repository.
func (r Repository) FilesURL() string {
	return strings.TrimRight(r.URL, "/") + "/" + r.Name + ".files"
}

// RepoIsMingw reports whether a repo name refers to one of the mingw
// flavored repositories rather than the msys base environment.
func RepoIsMingw(repo string) bool {
	return repo != "msys"
}
