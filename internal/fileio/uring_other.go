//go:build !linux

package fileio

import "errors"

// UringFS is only available on Linux.
type UringFS struct {
	OSFS
}

func NewUringFS(entries uint) (*UringFS, error) {
	return nil, errors.New("io_uring is not supported on this platform")
}

func (u *UringFS) Close() error {
	return nil
}
