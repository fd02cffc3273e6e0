package response

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"staticfromtcp/internal/errors"
	"staticfromtcp/internal/headers"
)

type StatusCode int

const (
	StatusOK             StatusCode = 200
	StatusBadRequest     StatusCode = 400
	StatusNotFound       StatusCode = 404
	StatusNotImplemented StatusCode = 501
)

// DefaultChunkSize is how much of a file is read and sent per write.
const DefaultChunkSize = 1 << 20

// Sentinel follows the last chunk of every streamed file.
var Sentinel = []byte("\x00\n")

func WriteStatusLine(w io.Writer, statusCode StatusCode) error {
	_, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\n", statusCode, http.StatusText(int(statusCode)))
	return err
}

func GetDefaultHeaders() *headers.Headers {
	h := headers.NewHeaders()
	h.Set("Content-Type", "text/html")
	h.Set("Connection", "close")
	return h
}

func WriteHeaders(w io.Writer, h *headers.Headers) error {
	_, err := h.WriteTo(w)
	return err
}

type Writer struct {
	w io.Writer
	// ChunkSize bounds each file read and connection write.
	ChunkSize int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:         w,
		ChunkSize: DefaultChunkSize,
	}
}

// WriteStatus sends the whole preamble for statusCode in one write. Only a
// 200 carries headers; every other status is a bare status line.
func (w *Writer) WriteStatus(statusCode StatusCode) error {
	var buf bytes.Buffer
	WriteStatusLine(&buf, statusCode)
	if statusCode == StatusOK {
		WriteHeaders(&buf, GetDefaultHeaders())
	}
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return errors.New(errors.Generic, fmt.Sprintf("write status %d", statusCode), err)
	}
	return nil
}

// StreamFile copies f to the connection ChunkSize bytes at a time and ends
// with the sentinel. A read shorter than ChunkSize marks the end of the
// file. Whatever was sent before a failure stays sent.
func (w *Writer) StreamFile(f io.ReaderAt) (int64, error) {
	chunkSize := w.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	var offset int64
	for {
		n, err := f.ReadAt(buf, offset)
		if err != nil && !stderrors.Is(err, io.EOF) {
			return offset, fmt.Errorf("read at offset %d: %w", offset, err)
		}
		if n > 0 {
			if _, werr := w.w.Write(buf[:n]); werr != nil {
				return offset, errors.New(errors.Generic, fmt.Sprintf("write chunk at offset %d", offset), werr)
			}
			offset += int64(n)
		}
		if n < chunkSize {
			break
		}
	}
	if _, err := w.w.Write(Sentinel); err != nil {
		return offset, errors.New(errors.Generic, "write sentinel", err)
	}
	return offset, nil
}
