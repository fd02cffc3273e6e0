package request

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"staticfromtcp/internal/errors"
)

const (
	// Bytes pulled off the connection per read.
	bufferSize = 256
	// MaxRequestSize caps how far the receive buffer may grow.
	MaxRequestSize = 64 * 1024
	// MaxPathLength is the path capacity including a terminator, so the
	// longest accepted path is MaxPathLength-1 bytes.
	MaxPathLength = 128
)

const (
	stateMethod = iota
	statePath
	stateFinished
)

type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
)

// Checked in this order.
var methodTokens = []struct {
	token  string
	method Method
}{
	{"get", MethodGet},
	{"post", MethodPost},
	{"put", MethodPut},
	{"delete", MethodDelete},
}

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

type Request struct {
	Method Method
	Path   string
}

func PrintRequestLine(r *Request) {
	fmt.Println("Request line:")
	fmt.Println("- Method: " + r.Method.String())
	fmt.Println("- Target: " + r.Path)
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Receiver frames one request off a connection.
type Receiver struct {
	// LineGrace is how long to keep waiting for header bytes once a full
	// request line has arrived. It only applies to readers with read
	// deadlines. Zero waits for the blank line, the peer closing or the
	// connection's own deadline.
	LineGrace time.Duration
}

// Receive reads from reader until the request head is complete: an empty
// line ends the header block, or the peer closes its side. A deadline that
// expires after a full request line has arrived also completes the message.
func Receive(reader io.Reader) ([]byte, error) {
	return Receiver{}.Receive(reader)
}

func (rc Receiver) Receive(reader io.Reader) ([]byte, error) {
	buf := make([]byte, 0, bufferSize)
	chunk := make([]byte, bufferSize)
	graced := false
	for {
		n, err := reader.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if headEnd(buf) {
			return buf, nil
		}
		if !graced && rc.LineGrace > 0 && bytes.IndexByte(buf, '\n') >= 0 {
			if d, ok := reader.(readDeadliner); ok {
				graced = true
				if derr := d.SetReadDeadline(time.Now().Add(rc.LineGrace)); derr != nil {
					return nil, errors.New(errors.SocketError, "set line grace deadline", derr)
				}
			}
		}
		if len(buf) > MaxRequestSize {
			return nil, errors.New(errors.OutOfMemory, fmt.Sprintf("request exceeds %d bytes", MaxRequestSize), nil)
		}
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return buf, nil
			}
			if stderrors.Is(err, os.ErrDeadlineExceeded) && bytes.IndexByte(buf, '\n') >= 0 {
				return buf, nil
			}
			return nil, errors.New(errors.SocketError, "receive failed", err)
		}
	}
}

func headEnd(buf []byte) bool {
	return bytes.Contains(buf, []byte("\r\n\r\n")) || bytes.Contains(buf, []byte("\n\n"))
}

// Parse decodes the method and path of the request line in data. Anything
// after the path token is ignored.
func Parse(data []byte) (*Request, error) {
	r := &Request{}
	pos := 0
	state := stateMethod
	for state != stateFinished {
		if pos == len(data) {
			return nil, errors.New(errors.ParseError, "unexpected end of request line", nil)
		}
		switch state {
		case stateMethod:
			end := nextSpace(data, pos)
			method, ok := lookupMethod(data[pos:end])
			if !ok {
				return nil, errors.New(errors.NotSupported, fmt.Sprintf("method %q", data[pos:end]), nil)
			}
			r.Method = method
			pos = skipBlanks(data, end)
			state = statePath
		case statePath:
			end := nextSpace(data, pos)
			if end == pos {
				return nil, errors.New(errors.ParseError, "missing path", nil)
			}
			if end-pos >= MaxPathLength {
				return nil, errors.New(errors.PathTooLong, fmt.Sprintf("%d bytes, limit %d", end-pos, MaxPathLength-1), nil)
			}
			r.Path = string(data[pos:end])
			state = stateFinished
		}
	}
	return r, nil
}

func RequestFromReader(reader io.Reader) (*Request, error) {
	return Receiver{}.RequestFromReader(reader)
}

func (rc Receiver) RequestFromReader(reader io.Reader) (*Request, error) {
	data, err := rc.Receive(reader)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func lookupMethod(token []byte) (Method, bool) {
	for _, m := range methodTokens {
		if bytes.EqualFold(token, []byte(m.token)) {
			return m.method, true
		}
	}
	return 0, false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

func nextSpace(data []byte, pos int) int {
	for pos < len(data) && !isSpace(data[pos]) {
		pos++
	}
	return pos
}

// skipBlanks stops at line breaks so a bare "GET\r\n" never borrows a path
// from the next line.
func skipBlanks(data []byte, pos int) int {
	for pos < len(data) && (data[pos] == ' ' || data[pos] == '\t') {
		pos++
	}
	return pos
}
