// Package recorder captures protocol traffic for deterministic regression
// testing.
//
// Recorder is a transparent tee: it wraps one readable or writable stream,
// passes every byte through unchanged, and appends a copy of each call's
// bytes, in call order, to an in-memory mirror and to a gzip-compressed
// recording file. Neither side of the wrapped stream can tell it is there.
// Closing the recorder makes the file durable; decompressing it reproduces
// the mirror exactly.
//
// Harness is the call/response half of the capture story. A data source's
// calls are routed through a named call site; the harness either executes
// the real producer and records each result (live mode) or pops pre-recorded
// results from an ordered queue (replay mode). The mode is selected once,
// at configuration time. Until then the harness is explicitly uninitialized
// and every operation other than mode selection fails with ErrNotConfigured.
package recorder
