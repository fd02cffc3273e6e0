package response

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticfromtcp/internal/errors"
)

// recordingWriter keeps every write separately and can fail after a number
// of successful writes.
type recordingWriter struct {
	writes    [][]byte
	failAfter int
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	if rw.failAfter >= 0 && len(rw.writes) >= rw.failAfter {
		return 0, io.ErrClosedPipe
	}
	rw.writes = append(rw.writes, append([]byte(nil), p...))
	return len(p), nil
}

func newRecorder() *recordingWriter {
	return &recordingWriter{failAfter: -1}
}

type failingReaderAt struct {
	data   []byte
	failAt int64
}

func (f *failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= f.failAt {
		return 0, io.ErrUnexpectedEOF
	}
	return bytes.NewReader(f.data).ReadAt(p, off)
}

func TestWriteStatus(t *testing.T) {

	// Test: Each status is one exact preamble in a single write
	for code, want := range map[StatusCode]string{
		StatusOK:             "HTTP/1.1 200 OK\nContent-Type: text/html\nConnection: close\n\n",
		StatusNotFound:       "HTTP/1.1 404 Not Found\n",
		StatusBadRequest:     "HTTP/1.1 400 Bad Request\n",
		StatusNotImplemented: "HTTP/1.1 501 Not Implemented\n",
	} {
		rec := newRecorder()
		err := NewWriter(rec).WriteStatus(code)
		require.NoError(t, err)
		require.Len(t, rec.writes, 1)
		assert.Equal(t, want, string(rec.writes[0]))
	}

	// Test: Write failure is reported as a generic error
	rec := &recordingWriter{failAfter: 0}
	err := NewWriter(rec).WriteStatus(StatusOK)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.Generic))
	assert.True(t, stderrors.Is(err, io.ErrClosedPipe))
}

func TestStreamFile(t *testing.T) {

	// Test: Number of writes is ceil(N/C) plus the sentinel
	for _, size := range []int{0, 1, 7, 8, 9, 16, 17, 100} {
		content := strings.Repeat("x", size)
		rec := newRecorder()
		w := NewWriter(rec)
		w.ChunkSize = 8
		n, err := w.StreamFile(strings.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, int64(size), n)

		chunks := (size + 7) / 8
		require.Len(t, rec.writes, chunks+1, "size %d", size)
		var body []byte
		for _, chunk := range rec.writes[:chunks] {
			assert.LessOrEqual(t, len(chunk), 8)
			body = append(body, chunk...)
		}
		assert.Equal(t, content, string(body))
		assert.Equal(t, Sentinel, rec.writes[chunks])
	}

	// Test: Bytes come through unchanged
	binary := []byte{0x00, 0xff, 0x10, '\n', '\r', 0x7f, 0x80}
	rec := newRecorder()
	w := NewWriter(rec)
	w.ChunkSize = 3
	_, err := w.StreamFile(bytes.NewReader(binary))
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte(nil), binary...), Sentinel...), bytes.Join(rec.writes, nil))

	// Test: Default chunk size when unset
	rec = newRecorder()
	w = &Writer{w: rec}
	_, err = w.StreamFile(strings.NewReader("hello"))
	require.NoError(t, err)
	require.Len(t, rec.writes, 2)
	assert.Equal(t, "hello", string(rec.writes[0]))

	// Test: Write failure mid-stream leaves the partial body
	rec = &recordingWriter{failAfter: 2}
	w = NewWriter(rec)
	w.ChunkSize = 4
	n, err := w.StreamFile(strings.NewReader("aaaabbbbcccc"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.Generic))
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "aaaabbbb", string(bytes.Join(rec.writes, nil)))

	// Test: Read failure aborts without the sentinel
	rec = newRecorder()
	w = NewWriter(rec)
	w.ChunkSize = 4
	n, err = w.StreamFile(&failingReaderAt{data: []byte("aaaabbbbcccc"), failAt: 4})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "aaaa", string(bytes.Join(rec.writes, nil)))
}
