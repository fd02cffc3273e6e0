// Package fileroot maps request paths onto files under a document root.
package fileroot

import (
	"fmt"
	"path/filepath"
	"strings"

	"staticfromtcp/internal/errors"
	"staticfromtcp/internal/fileio"
)

// IndexFiles are probed in order when a directory is requested. A
// candidate that is itself a directory is skipped.
var IndexFiles = []string{"index.html", "index.htm"}

type Resolver struct {
	root    string
	confine bool
	fsys    fileio.FS
}

func NewResolver(root string, confine bool, fsys fileio.FS) *Resolver {
	return &Resolver{
		root:    filepath.Clean(root),
		confine: confine,
		fsys:    fsys,
	}
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve joins requestPath onto the root. With confinement on, a path
// that leaves the root lexically is rejected before the filesystem is
// touched. Symlinks inside the root are followed.
func (r *Resolver) Resolve(requestPath string) (string, error) {
	servePath := filepath.Join(r.root, filepath.FromSlash(requestPath))
	if r.confine && !r.within(servePath) {
		return "", errors.New(errors.NotFound, fmt.Sprintf("%q escapes the document root", requestPath), nil)
	}

	if !r.fsys.IsDir(servePath) {
		return servePath, nil
	}
	for _, name := range IndexFiles {
		candidate := filepath.Join(servePath, name)
		if r.fsys.Exists(candidate) && !r.fsys.IsDir(candidate) {
			return candidate, nil
		}
	}
	return "", errors.New(errors.NotFound, fmt.Sprintf("no index file in %q", requestPath), nil)
}

func (r *Resolver) within(path string) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
