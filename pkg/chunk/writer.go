package chunk

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/tushartg/chunkstream/pkg/codec"
)

// DefaultMaxResultRows is the flush threshold used when the configuration
// does not set one.
const DefaultMaxResultRows = 50000

// FlushMode selects what a flush signals to the host. Exactly one mode
// applies per flush, which makes the finished/partial exclusivity a property
// of the type rather than a runtime check.
type FlushMode int

const (
	// FlushContinue emits a chunk without ending the session or marking an
	// intermediate result set. Implicit threshold flushes use this mode.
	FlushContinue FlushMode = iota
	// FlushPartial emits a chunk carrying an intermediate result set.
	FlushPartial
	// FlushFinished emits the final chunk; the writer refuses records
	// afterwards.
	FlushFinished
)

func (m FlushMode) String() string {
	switch m {
	case FlushContinue:
		return "continue"
	case FlushPartial:
		return "partial"
	case FlushFinished:
		return "finished"
	default:
		return fmt.Sprintf("FlushMode(%d)", int(m))
	}
}

// Errors
var (
	ErrInvalidFlushMode = &ContractError{"invalid flush mode"}
	ErrWriterFinished   = &ContractError{"record writer is finished"}
	ErrNoOutput         = &ContractError{"record writer requires an output stream"}
)

// ContractError reports a caller-side misuse of the writer. It is
// synchronous and never retried.
type ContractError struct {
	Message string
}

func (e *ContractError) Error() string {
	return e.Message
}

// RecordWriterConfig holds configuration for a RecordWriter.
type RecordWriterConfig struct {
	Output        io.Writer // destination stream, caller-owned
	MaxResultRows int       // records per chunk before an implicit flush
	Metrics       *Metrics  // optional instrumentation
}

// RecordWriter batches records into protocol chunks.
//
// Field names are negotiated per chunk: the first record fixes the initial
// order and later records may only add names. Rows written before a name was
// known are padded at flush time. The writer is single-threaded by contract;
// the destination stream is exclusively owned and never closed here.
type RecordWriter struct {
	out           io.Writer
	codec         *codec.MetadataCodec
	maxResultRows int
	metrics       *Metrics

	fieldnames []string
	fieldIndex map[string]int
	rows       [][]string
	inspector  *Inspector

	pending   int
	committed int64
	chunks    int64
	finished  bool
}

// NewRecordWriter creates a writer that emits chunks to config.Output.
func NewRecordWriter(config RecordWriterConfig) (*RecordWriter, error) {
	if config.Output == nil {
		return nil, ErrNoOutput
	}
	maxResultRows := config.MaxResultRows
	if maxResultRows <= 0 {
		maxResultRows = DefaultMaxResultRows
	}
	return &RecordWriter{
		out:           config.Output,
		codec:         codec.NewMetadataCodec(),
		maxResultRows: maxResultRows,
		metrics:       config.Metrics,
		fieldIndex:    make(map[string]int),
		inspector:     newInspector(),
	}, nil
}

// PendingRecordCount returns the number of records buffered for the next
// chunk.
func (w *RecordWriter) PendingRecordCount() int {
	return w.pending
}

// CommittedRecordCount returns the cumulative number of records flushed over
// the writer's lifetime.
func (w *RecordWriter) CommittedRecordCount() int64 {
	return w.committed
}

// ChunkCount returns the cumulative number of chunks emitted.
func (w *RecordWriter) ChunkCount() int64 {
	return w.chunks
}

// Fieldnames returns the field-name list negotiated for the pending chunk,
// in first-seen order.
func (w *RecordWriter) Fieldnames() []string {
	names := make([]string, len(w.fieldnames))
	copy(names, w.fieldnames)
	return names
}

// Inspector exposes the diagnostics accumulated for the pending chunk.
func (w *RecordWriter) Inspector() *Inspector {
	return w.inspector
}

// WriteRecord buffers one record, extending the field-name list with any
// names not seen since the last flush. Reaching the configured row threshold
// triggers an implicit Flush(FlushContinue).
func (w *RecordWriter) WriteRecord(record *codec.Object) error {
	if w.finished {
		return fmt.Errorf("%w: cannot write records after a finished flush", ErrWriterFinished)
	}

	for _, name := range record.Keys() {
		if _, known := w.fieldIndex[name]; !known {
			w.fieldIndex[name] = len(w.fieldnames)
			w.fieldnames = append(w.fieldnames, name)
		}
	}

	row := make([]string, len(w.fieldnames))
	for _, name := range record.Keys() {
		value, _ := record.Get(name)
		cell, err := w.cell(value)
		if err != nil {
			return fmt.Errorf("serializing field %q: %w", name, err)
		}
		row[w.fieldIndex[name]] = cell
	}
	w.rows = append(w.rows, row)
	w.pending++

	if w.pending >= w.maxResultRows {
		return w.Flush(FlushContinue)
	}
	return nil
}

// WriteMessage formats text and adds it to the inspector's message list.
func (w *RecordWriter) WriteMessage(severity Severity, format string, args ...any) {
	w.inspector.AddMessage(severity, format, args...)
	w.metrics.ObserveMessage(severity)
}

// WriteMetric stores or overwrites the named metric in the inspector.
func (w *RecordWriter) WriteMetric(name string, metric Metric) {
	w.inspector.SetMetric(name, metric)
}

// Flush serializes the pending records and inspector into one chunk and
// writes it to the destination stream as a single write. On success the
// pending buffer, field-name list and inspector are reset and the cumulative
// counters advance. Stream errors propagate unchanged and leave the pending
// state intact.
func (w *RecordWriter) Flush(mode FlushMode) error {
	if mode < FlushContinue || mode > FlushFinished {
		return fmt.Errorf("%w: %s", ErrInvalidFlushMode, mode)
	}
	if w.finished {
		return fmt.Errorf("%w: cannot flush after a finished flush", ErrWriterFinished)
	}

	started := time.Now()

	body, err := w.renderBody()
	if err != nil {
		return err
	}

	metadata, err := w.codec.Encode(w.renderMetadata(mode))
	if err != nil {
		return fmt.Errorf("encoding chunk metadata: %w", err)
	}

	var frame bytes.Buffer
	frame.Grow(len(metadata) + len(body) + 32)
	fmt.Fprintf(&frame, "%s,%d,%d\n", protocolVersion, len(metadata), len(body))
	frame.Write(metadata)
	frame.Write(body)

	// One write per chunk keeps partial frames invisible downstream.
	if _, err := w.out.Write(frame.Bytes()); err != nil {
		return err
	}

	flushed := w.pending
	w.committed += int64(flushed)
	w.chunks++
	w.pending = 0
	w.rows = nil
	w.fieldnames = nil
	w.fieldIndex = make(map[string]int)
	w.inspector.reset()
	if mode == FlushFinished {
		w.finished = true
	}

	w.metrics.ObserveFlush(mode, flushed, frame.Len(), time.Since(started))
	return nil
}

// renderBody emits the pending rows as CSV: a header row of the negotiated
// field names followed by one row per record, padded to uniform width.
func (w *RecordWriter) renderBody() ([]byte, error) {
	if len(w.rows) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	out := csv.NewWriter(&buf)
	if err := out.Write(w.fieldnames); err != nil {
		return nil, fmt.Errorf("writing header row: %w", err)
	}
	for _, row := range w.rows {
		for len(row) < len(w.fieldnames) {
			row = append(row, "")
		}
		if err := out.Write(row); err != nil {
			return nil, fmt.Errorf("writing row: %w", err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *RecordWriter) renderMetadata(mode FlushMode) *codec.Object {
	metadata := codec.NewObject()
	if len(w.fieldnames) > 0 {
		metadata.Set("fieldnames", w.fieldnames)
	}
	if !w.inspector.Empty() {
		metadata.Set("inspector", w.inspector.encode())
	}
	metadata.Set("finished", mode == FlushFinished)
	metadata.Set("partial", mode == FlushPartial)
	return metadata
}

// cell serializes one record value for the row body. Strings pass through
// verbatim; null becomes the empty cell; everything else is codec-encoded.
func (w *RecordWriter) cell(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		encoded, err := w.codec.Encode(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}
