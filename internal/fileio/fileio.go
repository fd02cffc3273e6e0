// Package fileio is the filesystem surface the server reads documents
// through: existence checks, directory checks and positional reads.
package fileio

import (
	"io"
	"os"
)

type File interface {
	io.ReaderAt
	io.Closer
}

type FS interface {
	Exists(path string) bool
	IsDir(path string) bool
	// Open opens path read-only.
	Open(path string) (File, error)
}

// OSFS reads straight from the operating system.
type OSFS struct{}

func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (OSFS) Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}
