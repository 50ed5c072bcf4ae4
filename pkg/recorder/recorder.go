package recorder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Errors
var (
	ErrNotReadable = &ModeError{"recorder does not wrap a readable stream"}
	ErrNotWritable = &ModeError{"recorder does not wrap a writable stream"}
)

// ModeError reports a call that the recorder's wrapped stream cannot serve.
type ModeError struct {
	Message string
}

func (e *ModeError) Error() string {
	return e.Message
}

// Recorder wraps one underlying stream and mirrors every byte it observes
// into memory and into a gzip-compressed recording file.
type Recorder struct {
	src    io.Reader
	dst    io.Writer
	mirror bytes.Buffer
	file   *os.File
	gz     *gzip.Writer
	closed bool
}

// NewReaderRecorder wraps src; bytes returned by Read are recorded to the
// file at path.
func NewReaderRecorder(path string, src io.Reader) (*Recorder, error) {
	r, err := newRecorder(path)
	if err != nil {
		return nil, err
	}
	r.src = src
	return r, nil
}

// NewWriterRecorder wraps dst; bytes accepted by Write are recorded to the
// file at path.
func NewWriterRecorder(path string, dst io.Writer) (*Recorder, error) {
	r, err := newRecorder(path)
	if err != nil {
		return nil, err
	}
	r.dst = dst
	return r, nil
}

func newRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		file: file,
		gz:   gzip.NewWriter(file),
	}, nil
}

// Read satisfies the call against the wrapped stream and records exactly the
// bytes returned to the caller.
func (r *Recorder) Read(p []byte) (int, error) {
	if r.src == nil {
		return 0, ErrNotReadable
	}
	n, err := r.src.Read(p)
	if n > 0 {
		if recErr := r.record(p[:n]); recErr != nil && err == nil {
			err = recErr
		}
	}
	return n, err
}

// Write forwards the bytes unchanged and records exactly the bytes the
// underlying stream accepted.
func (r *Recorder) Write(p []byte) (int, error) {
	if r.dst == nil {
		return 0, ErrNotWritable
	}
	n, err := r.dst.Write(p)
	if n > 0 {
		if recErr := r.record(p[:n]); recErr != nil && err == nil {
			err = recErr
		}
	}
	return n, err
}

func (r *Recorder) record(p []byte) error {
	r.mirror.Write(p)
	if _, err := r.gz.Write(p); err != nil {
		return fmt.Errorf("appending to recording: %w", err)
	}
	return nil
}

// Mirror returns a copy of every byte observed so far.
func (r *Recorder) Mirror() []byte {
	mirror := make([]byte, r.mirror.Len())
	copy(mirror, r.mirror.Bytes())
	return mirror
}

// Path returns the recording file path.
func (r *Recorder) Path() string {
	return r.file.Name()
}

// Close flushes and closes the recording file. The underlying wrapped stream
// is caller-owned and stays open. Close is safe to call more than once.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	gzErr := r.gz.Close()
	syncErr := r.file.Sync()
	closeErr := r.file.Close()

	if gzErr != nil {
		return fmt.Errorf("finalizing recording: %w", gzErr)
	}
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
