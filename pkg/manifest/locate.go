package manifest

import (
	"io/fs"
	"path/filepath"

	"github.com/matzehuels/cratemap/pkg/errors"
)

// manifestNames are the file names the locator recognizes.
var manifestNames = map[string]bool{
	"Cargo.toml": true,
	"cargo.toml": true,
}

// Locate walks the tree under root and returns the first manifest whose
// package name equals pkg.
//
// The walk is filepath.WalkDir's deterministic lexical order, so when the
// tree contains several manifests declaring the same name the
// lexicographically first path wins. Unreadable directories and unreadable
// or malformed manifest files are skipped. A tree without a match yields a
// MANIFEST_NOT_FOUND error.
func Locate(root, pkg string) (*Manifest, error) {
	var found *Manifest

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if d.IsDir() || !manifestNames[d.Name()] {
			return nil
		}

		m, perr := ParseFile(path)
		if perr != nil {
			return nil
		}
		if m.Name == pkg {
			found = m
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, errors.New(errors.ErrCodeManifestNotFound, "no manifest for package %q under %s", pkg, root)
	}
	return found, nil
}
