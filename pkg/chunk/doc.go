// Package chunk implements the length-prefixed chunked wire protocol used to
// exchange tabular records with a host process.
//
// Each chunk is framed as a text header line followed by two blocks:
//
//	chunked 1.0,<metadata_length>,<body_length>\n
//	<metadata_length bytes of codec-encoded metadata>
//	<body_length bytes of serialized rows>
//
// The metadata block is encoded with pkg/codec and carries the negotiated
// field-name list, the inspector (diagnostic messages and named metrics), and
// the finished/partial flags. The body block holds CSV rows in negotiated
// field order.
//
// RecordWriter batches records until a configured row threshold triggers an
// implicit flush, or until the caller flushes explicitly. A flush assembles
// the complete chunk in memory and hands it to the destination stream as a
// single write, so a downstream reader never observes a partial chunk.
// Reader is the inverse: it walks a byte stream chunk by chunk, validating
// the frame and decoding the metadata block.
//
// The destination and source streams are exclusively owned by the writer or
// reader using them and are never closed by this package; closing is the
// caller's responsibility.
package chunk
