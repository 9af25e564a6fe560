package fetch

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/msys2/msys2-web/pkg/types"
)

// srcinfoRecord is one entry in the srcinfo cache the recipe
// repositories publish: a recipe checkout plus its SRCINFO dump per
// target repo, keyed by PKGBUILD content hash.
type srcinfoRecord struct {
	Repo    string            `json:"repo"`
	Path    string            `json:"path"`
	Date    string            `json:"date"`
	SrcInfo map[string]string `json:"srcinfo"`
}

// ParseSrcInfoCache parses a srcinfo.json payload (optionally gzip or
// zstd compressed) into recipe sections.  Records and their per-repo
// dumps are walked in sorted order, so which section is first seen
// for a duplicated pkgname is deterministic.
func ParseSrcInfoCache(data []byte) ([]*types.SrcInfoPackage, error) {
	r, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompressing srcinfo cache: %w", err)
	}

	var records map[string]srcinfoRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding srcinfo cache: %w", err)
	}

	hashes := make([]string, 0, len(records))
	for hash := range records {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var result []*types.SrcInfoPackage
	for _, hash := range hashes {
		rec := records[hash]
		repos := make([]string, 0, len(rec.SrcInfo))
		for repo := range rec.SrcInfo {
			repos = append(repos, repo)
		}
		sort.Strings(repos)
		for _, repo := range repos {
			result = append(result,
				types.ParseSrcInfo(rec.SrcInfo[repo], repo, rec.Repo, rec.Path, rec.Date)...)
		}
	}
	return result, nil
}
