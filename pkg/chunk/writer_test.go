package chunk

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushartg/chunkstream/pkg/codec"
)

func makeRecord(serial int) *codec.Object {
	record := codec.NewObject()
	record.Set("_serial", int64(serial))
	record.Set("_time", 1700000000.25)
	record.Set("text", fmt.Sprintf("record %d", serial))
	return record
}

func TestRecordWriter_ThresholdFlushes(t *testing.T) {
	var output bytes.Buffer
	writer, err := NewRecordWriter(RecordWriterConfig{Output: &output, MaxResultRows: 10})
	require.NoError(t, err)

	for serial := 0; serial < 31; serial++ {
		require.NoError(t, writer.WriteRecord(makeRecord(serial)))
		assert.Equal(t, (serial+1)%10, writer.PendingRecordCount(), "pending count after record %d", serial)
	}

	// Three implicit flushes happened, one record is still pending.
	assert.Equal(t, int64(3), writer.ChunkCount())
	assert.Equal(t, int64(30), writer.CommittedRecordCount())
	assert.Equal(t, 1, writer.PendingRecordCount())

	require.NoError(t, writer.Flush(FlushFinished))

	assert.Equal(t, int64(4), writer.ChunkCount())
	assert.Equal(t, int64(31), writer.CommittedRecordCount())
	assert.Equal(t, 0, writer.PendingRecordCount())
	assert.Empty(t, writer.Fieldnames())

	// Read the stream back and verify framing, flags and row counts.
	reader := NewReader(bytes.NewReader(output.Bytes()))
	rowCounts := []int{10, 10, 10, 1}
	for i, want := range rowCounts {
		chk, err := reader.Next()
		require.NoError(t, err, "chunk %d", i)

		assert.Equal(t, i == 3, chk.Finished(), "chunk %d finished flag", i)
		assert.False(t, chk.Partial(), "chunk %d partial flag", i)
		assert.Equal(t, []string{"_serial", "_time", "text"}, chk.Fieldnames(), "chunk %d fieldnames", i)

		rows, err := csv.NewReader(bytes.NewReader(chk.Body)).ReadAll()
		require.NoError(t, err, "chunk %d body", i)
		assert.Len(t, rows, want+1, "chunk %d rows including header", i)
		assert.Equal(t, []string{"_serial", "_time", "text"}, rows[0], "chunk %d header row", i)
	}

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRecordWriter_FieldnameNegotiation(t *testing.T) {
	var output bytes.Buffer
	writer, err := NewRecordWriter(RecordWriterConfig{Output: &output, MaxResultRows: 100})
	require.NoError(t, err)

	first := codec.NewObject()
	first.Set("alpha", "1")
	first.Set("beta", "2")
	require.NoError(t, writer.WriteRecord(first))

	second := codec.NewObject()
	second.Set("beta", "3")
	second.Set("gamma", "4")
	require.NoError(t, writer.WriteRecord(second))

	third := codec.NewObject()
	third.Set("alpha", "5")
	require.NoError(t, writer.WriteRecord(third))

	// Union of all fields seen, in first-seen order.
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, writer.Fieldnames())

	require.NoError(t, writer.Flush(FlushContinue))

	reader := NewReader(bytes.NewReader(output.Bytes()))
	chk, err := reader.Next()
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, chk.Fieldnames())

	rows, err := csv.NewReader(bytes.NewReader(chk.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Short rows are padded to the full negotiated width.
	assert.Equal(t, []string{"1", "2", ""}, rows[1])
	assert.Equal(t, []string{"", "3", "4"}, rows[2])
	assert.Equal(t, []string{"5", "", ""}, rows[3])
}

func TestRecordWriter_InspectorLifecycle(t *testing.T) {
	var output bytes.Buffer
	writer, err := NewRecordWriter(RecordWriterConfig{Output: &output, MaxResultRows: 100})
	require.NoError(t, err)

	severities := []Severity{SeverityDebug, SeverityInfo, SeverityWarn, SeverityError, SeverityFatal}
	for i, severity := range severities {
		writer.WriteMessage(severity, "message %d", i)
	}
	writer.WriteMetric("metric-1", Metric{Duration: time.Second, Invocations: 2, InputCount: 3, OutputCount: 4})
	writer.WriteMetric("metric-2", Metric{Duration: 5 * time.Second, Invocations: 6, InputCount: 7, OutputCount: 8})

	messages := writer.Inspector().Messages()
	require.Len(t, messages, 5)
	assert.Equal(t, Message{Severity: SeverityWarn, Text: "message 2"}, messages[2])

	metric, ok := writer.Inspector().Metric("metric-1")
	require.True(t, ok)
	assert.Equal(t, int64(3), metric.InputCount)

	// Messages and metrics ride the next flush even with no records pending.
	require.NoError(t, writer.Flush(FlushPartial))
	assert.True(t, writer.Inspector().Empty(), "inspector must reset after a flush")

	reader := NewReader(bytes.NewReader(output.Bytes()))
	chk, err := reader.Next()
	require.NoError(t, err)

	assert.True(t, chk.Partial())
	assert.False(t, chk.Finished())
	assert.Empty(t, chk.Body)

	inspector := chk.Inspector()
	rawMessages, ok := inspector.Get("messages")
	require.True(t, ok)
	decoded := rawMessages.([]any)
	require.Len(t, decoded, 5)
	assert.Equal(t, []any{"fatal", "message 4"}, decoded[4])

	rawMetric, ok := inspector.Get("metric.metric-2")
	require.True(t, ok)
	assert.Equal(t, []any{5.0, int64(6), int64(7), int64(8)}, rawMetric)

	// Reserved prefix keeps metric names apart from inspector keys.
	assert.False(t, inspector.Has("metric-2"))
}

func TestRecordWriter_FlushContract(t *testing.T) {
	var output bytes.Buffer
	writer, err := NewRecordWriter(RecordWriterConfig{Output: &output, MaxResultRows: 10})
	require.NoError(t, err)

	// Out-of-range modes are contract violations, synchronous and
	// non-retryable.
	assert.ErrorIs(t, writer.Flush(FlushMode(3)), ErrInvalidFlushMode)
	assert.ErrorIs(t, writer.Flush(FlushMode(-1)), ErrInvalidFlushMode)
	assert.Equal(t, int64(0), writer.ChunkCount())

	require.NoError(t, writer.WriteRecord(makeRecord(0)))
	require.NoError(t, writer.Flush(FlushFinished))

	// The session is over: no more records, no more flushes.
	assert.ErrorIs(t, writer.WriteRecord(makeRecord(1)), ErrWriterFinished)
	assert.ErrorIs(t, writer.Flush(FlushContinue), ErrWriterFinished)
	assert.ErrorIs(t, writer.Flush(FlushFinished), ErrWriterFinished)
	assert.Equal(t, int64(1), writer.ChunkCount())
}

type failingWriter struct {
	err error
}

func (w *failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestRecordWriter_StreamErrorsPropagate(t *testing.T) {
	streamErr := errors.New("connection reset")
	writer, err := NewRecordWriter(RecordWriterConfig{Output: &failingWriter{err: streamErr}, MaxResultRows: 10})
	require.NoError(t, err)

	require.NoError(t, writer.WriteRecord(makeRecord(0)))

	// The stream error surfaces unchanged; nothing is committed or reset.
	assert.ErrorIs(t, writer.Flush(FlushContinue), streamErr)
	assert.Equal(t, 1, writer.PendingRecordCount())
	assert.Equal(t, int64(0), writer.ChunkCount())
	assert.Equal(t, int64(0), writer.CommittedRecordCount())
}

func TestRecordWriter_NonFiniteValuesInRecords(t *testing.T) {
	var output bytes.Buffer
	writer, err := NewRecordWriter(RecordWriterConfig{Output: &output, MaxResultRows: 10})
	require.NoError(t, err)

	record := codec.NewObject()
	record.Set("nan", math.NaN())
	record.Set("inf", math.Inf(1))
	record.Set("neg", math.Inf(-1))
	record.Set("nested", []any{int64(1), "two"})
	require.NoError(t, writer.WriteRecord(record))
	require.NoError(t, writer.Flush(FlushFinished))

	reader := NewReader(bytes.NewReader(output.Bytes()))
	chk, err := reader.Next()
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(chk.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"NaN", "Infinity", "-Infinity", `[1,"two"]`}, rows[1])
}

func TestRecordWriter_RequiresOutput(t *testing.T) {
	_, err := NewRecordWriter(RecordWriterConfig{})
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestRecordWriter_MetricsObserved(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	var output bytes.Buffer
	writer, err := NewRecordWriter(RecordWriterConfig{Output: &output, MaxResultRows: 10, Metrics: metrics})
	require.NoError(t, err)

	require.NoError(t, writer.WriteRecord(makeRecord(0)))
	writer.WriteMessage(SeverityInfo, "hello")
	require.NoError(t, writer.Flush(FlushFinished))

	families, err := registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[family.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, values["chunkstream_chunks_flushed_total"])
	assert.Equal(t, 1.0, values["chunkstream_records_committed_total"])
	assert.Equal(t, 1.0, values["chunkstream_inspector_messages_total"])
	assert.Greater(t, values["chunkstream_frame_bytes_written_total"], 0.0)
}
