//go:build linux

package fileio

import (
	"fmt"
	"io"
	"os"

	"github.com/iceber/iouring-go"
)

// UringFS serves positional reads through a shared io_uring instance.
// Metadata checks go through OSFS.
type UringFS struct {
	OSFS
	iour *iouring.IOURing
}

func NewUringFS(entries uint) (*UringFS, error) {
	iour, err := iouring.New(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize io_uring: %w", err)
	}
	return &UringFS{iour: iour}, nil
}

func (u *UringFS) Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &uringFile{file: f, fd: int(f.Fd()), iour: u.iour}, nil
}

func (u *UringFS) Close() error {
	return u.iour.Close()
}

type uringFile struct {
	file *os.File
	fd   int
	iour *iouring.IOURing
}

// ReadAt follows the io.ReaderAt contract: a short read comes with io.EOF.
func (f *uringFile) ReadAt(p []byte, off int64) (int, error) {
	total := 0
	for total < len(p) {
		ch := make(chan iouring.Result, 1)
		prepReq := iouring.Pread(f.fd, p[total:], uint64(off)+uint64(total))
		if _, err := f.iour.SubmitRequest(prepReq, ch); err != nil {
			return total, fmt.Errorf("failed to submit read request: %w", err)
		}

		result := <-ch
		n, err := result.ReturnInt()
		if err != nil {
			return total, &os.PathError{Op: "pread", Path: f.file.Name(), Err: err}
		}
		if n == 0 {
			return total, io.EOF
		}
		total += n
	}
	return total, nil
}

func (f *uringFile) Close() error {
	return f.file.Close()
}
