package fanout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/c360/ringcast/errors"
	"github.com/c360/ringcast/pkg/retry"
)

// SinkOpener opens the output for one consumer.
type SinkOpener func(ctx context.Context, path string) (io.WriteCloser, error)

// FileSink is a buffered output file.
type FileSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *bufio.Writer
}

// OpenFileSink creates or truncates path, retrying transient failures with
// retry.Quick(). Permission and missing-directory errors fail immediately.
func OpenFileSink(ctx context.Context, path string) (io.WriteCloser, error) {
	var f *os.File
	err := retry.Do(ctx, retry.Quick(), func() error {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil && (os.IsPermission(err) || os.IsNotExist(err)) {
			return retry.NonRetryable(err)
		}
		return err
	})
	if err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrSinkUnavailable, err),
			"FileSink", "Open", fmt.Sprintf("open %s", path))
	}

	return &FileSink{
		path: path,
		f:    f,
		w:    bufio.NewWriter(f),
	}, nil
}

// Write writes p to the buffer.
func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return 0, os.ErrClosed
	}
	return s.w.Write(p)
}

// Close flushes and closes the file. Close is idempotent.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}

	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	s.f = nil

	if flushErr != nil {
		return errors.WrapFatal(flushErr, "FileSink", "Close", fmt.Sprintf("flush %s", s.path))
	}
	if closeErr != nil {
		return errors.WrapFatal(closeErr, "FileSink", "Close", fmt.Sprintf("close %s", s.path))
	}
	return nil
}

// Path returns the file path.
func (s *FileSink) Path() string {
	return s.path
}
