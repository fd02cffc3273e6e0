package headers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersSet(t *testing.T) {

	// Test: Valid single header
	headers := NewHeaders()
	err := headers.Set("Content-Type", "text/html")
	require.NoError(t, err)
	value, ok := headers.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/html", value)
	assert.Equal(t, 1, headers.Len())

	// Test: Value whitespace is trimmed
	headers = NewHeaders()
	err = headers.Set("Connection", "   close   ")
	require.NoError(t, err)
	value, _ = headers.Get("Connection")
	assert.Equal(t, "close", value)

	// Test: Same key with different case replaces the value
	headers = NewHeaders()
	require.NoError(t, headers.Set("Content-Type", "text/plain"))
	require.NoError(t, headers.Set("content-TYPE", "text/html"))
	value, _ = headers.Get("Content-Type")
	assert.Equal(t, "text/html", value)
	assert.Equal(t, 1, headers.Len())

	// Test: Invalid character in header key
	headers = NewHeaders()
	err = headers.Set("HÂ©st", "localhost:42069")
	require.Error(t, err)
	assert.Equal(t, 0, headers.Len())

	// Test: Space in header key
	headers = NewHeaders()
	err = headers.Set("Content Type", "text/html")
	require.Error(t, err)

	// Test: Empty key
	headers = NewHeaders()
	err = headers.Set("", "text/html")
	require.Error(t, err)

	// Test: Empty value
	headers = NewHeaders()
	err = headers.Set("Connection", "  ")
	require.Error(t, err)

	// Test: Value with a line break
	headers = NewHeaders()
	err = headers.Set("Connection", "close\nX-Injected: 1")
	require.Error(t, err)

	// Test: Missing key
	headers = NewHeaders()
	_, ok = headers.Get("Host")
	assert.False(t, ok)
}

func TestHeadersWriteTo(t *testing.T) {

	// Test: Fields keep insertion order
	headers := NewHeaders()
	require.NoError(t, headers.Set("Content-Type", "text/html"))
	require.NoError(t, headers.Set("Connection", "close"))
	var buf bytes.Buffer
	n, err := headers.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Content-Type: text/html\nConnection: close\n\n", buf.String())
	assert.Equal(t, int64(buf.Len()), n)

	// Test: Empty block is just the terminating line
	buf.Reset()
	_, err = NewHeaders().WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "\n", buf.String())
}
