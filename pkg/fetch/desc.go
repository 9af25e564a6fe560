// Package fetch retrieves and parses the upstream inputs of a
// snapshot: the pacman files databases per repository and the srcinfo
// cache of the recipe repositories.
package fetch

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/msys2/msys2-web/pkg/types"
)

// ParseDesc parses one pacman desc/files block: a %KEY% line followed
// by its values, sections separated by blank lines.
func ParseDesc(t string) map[string][]string {
	d := make(map[string][]string)
	var cat string
	var values []string
	for _, line := range strings.Split(t, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case cat == "":
			cat = line
		case line == "":
			d[cat] = values
			cat = ""
			values = nil
		default:
			values = append(values, line)
		}
	}
	if cat != "" {
		d[cat] = values
	}
	return d
}

// decompress unwraps the database payload.  The MSYS2 mirrors serve
// gzip today and zstd is what pacman is moving to, so both are
// sniffed by magic bytes; anything else is assumed to be a raw tar.
func decompress(data []byte) (io.Reader, error) {
	br := bytes.NewReader(data)
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return gzip.NewReader(br)
	case len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd:
		d, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	default:
		return br, nil
	}
}

// ParseFilesDB parses a repository files database into sources
// grouped by pkgbase.  Entries are visited in sorted order so the
// result does not depend on archive layout.
func ParseFilesDB(data []byte, repo types.Repository) (map[string]*types.Source, error) {
	r, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s database: %w", repo.Name, err)
	}

	// collect the per-package desc/files members first
	blocks := make(map[string]map[string][]byte)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s database: %w", repo.Name, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		entry := strings.SplitN(hdr.Name, "/", 2)[0]
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading %s database entry %s: %w", repo.Name, hdr.Name, err)
		}
		m, ok := blocks[entry]
		if !ok {
			m = make(map[string][]byte)
			blocks[entry] = m
		}
		m[hdr.Name] = content
	}

	entries := make([]string, 0, len(blocks))
	for entry := range blocks {
		entries = append(entries, entry)
	}
	sort.Strings(entries)

	sources := make(map[string]*types.Source)
	for _, entry := range entries {
		members := blocks[entry]
		names := make([]string, 0, len(members))
		for name := range members {
			names = append(names, name)
		}
		sort.Strings(names)

		var text strings.Builder
		for _, name := range names {
			if strings.HasSuffix(name, "/desc") ||
				strings.HasSuffix(name, "/depends") ||
				strings.HasSuffix(name, "/files") {
				text.Write(members[name])
			}
		}
		d := ParseDesc(text.String())

		base := types.BaseFromDesc(d, repo.Name)
		src, ok := sources[base]
		if !ok {
			src = types.NewSource(base)
			sources[base] = src
		}
		src.AddPackage(types.NewBinaryPackage(d, base, repo))
	}
	return sources, nil
}

// MergeSources folds per-repository source maps into one, combining
// the package sets of sources that exist in several repos.
func MergeSources(maps ...map[string]*types.Source) map[string]*types.Source {
	final := make(map[string]*types.Source)
	for _, m := range maps {
		for name, src := range m {
			if have, ok := final[name]; ok {
				for _, p := range src.Packages {
					have.AddPackage(p)
				}
			} else {
				final[name] = src
			}
		}
	}
	return final
}
