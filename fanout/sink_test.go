package fanout

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringcast/errors"
)

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file0.txt")

	sink, err := OpenFileSink(context.Background(), path)
	require.NoError(t, err)

	for _, b := range []byte("hello") {
		_, err := sink.Write([]byte{b})
		require.NoError(t, err)
	}
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "Close is idempotent")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = sink.Write([]byte{'x'})
	assert.Error(t, err)
	assert.Equal(t, path, sink.(*FileSink).Path())
}

func TestFileSinkTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file0.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous run"), 0644))

	sink, err := OpenFileSink(context.Background(), path)
	require.NoError(t, err)
	_, err = sink.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFileSinkMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "file0.txt")

	_, err := OpenFileSink(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.True(t, errors.Is(err, errors.ErrSinkUnavailable))
	assert.Contains(t, err.Error(), "non-retryable")
}
