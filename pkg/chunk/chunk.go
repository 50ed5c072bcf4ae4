package chunk

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tushartg/chunkstream/pkg/codec"
)

// protocolVersion is the fixed preamble of every chunk header line.
const protocolVersion = "chunked 1.0"

// Errors
var (
	ErrBadHeader   = &ProtocolError{"malformed chunk header"}
	ErrBadMetadata = &ProtocolError{"malformed chunk metadata"}
	ErrShortChunk  = &ProtocolError{"truncated chunk"}
)

// ProtocolError represents a violation of the chunked wire format.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// Chunk is one decoded unit of the wire protocol.
type Chunk struct {
	Metadata *codec.Object
	Body     []byte
}

// Finished reports whether the chunk ends the session.
func (c *Chunk) Finished() bool {
	v, _ := c.Metadata.Get("finished")
	b, _ := v.(bool)
	return b
}

// Partial reports whether the chunk carries an intermediate result set.
func (c *Chunk) Partial() bool {
	v, _ := c.Metadata.Get("partial")
	b, _ := v.(bool)
	return b
}

// Fieldnames returns the negotiated field-name list, or nil when the chunk
// carries none.
func (c *Chunk) Fieldnames() []string {
	v, ok := c.Metadata.Get("fieldnames")
	if !ok {
		return nil
	}
	elems, ok := v.([]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(elems))
	for _, elem := range elems {
		if s, ok := elem.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// Inspector returns the inspector object embedded in the metadata, or an
// empty object when the chunk carries none.
func (c *Chunk) Inspector() *codec.Object {
	v, ok := c.Metadata.Get("inspector")
	if ok {
		if obj, ok := v.(*codec.Object); ok {
			return obj
		}
	}
	return codec.NewObject()
}

// Reader walks a byte stream chunk by chunk.
type Reader struct {
	reader *bufio.Reader
	codec  *codec.MetadataCodec
}

// NewReader creates a chunk reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: bufio.NewReader(r),
		codec:  codec.NewMetadataCodec(),
	}
}

// Next reads and decodes the next chunk. It returns io.EOF once the stream
// is cleanly exhausted; a stream ending mid-chunk is an error.
func (r *Reader) Next() (*Chunk, error) {
	line, err := r.reader.ReadString('\n')
	if err == io.EOF && line == "" {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading chunk header: %w", err)
	}

	metadataLength, bodyLength, err := parseHeader(strings.TrimSuffix(line, "\n"))
	if err != nil {
		return nil, err
	}

	metadata := make([]byte, metadataLength)
	if _, err := io.ReadFull(r.reader, metadata); err != nil {
		return nil, fmt.Errorf("%w: metadata block: %v", ErrShortChunk, err)
	}

	decoded, err := r.codec.Decode(metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	obj, ok := decoded.(*codec.Object)
	if !ok {
		return nil, fmt.Errorf("%w: metadata is not an object", ErrBadMetadata)
	}

	body := make([]byte, bodyLength)
	if _, err := io.ReadFull(r.reader, body); err != nil {
		return nil, fmt.Errorf("%w: body block: %v", ErrShortChunk, err)
	}

	return &Chunk{Metadata: obj, Body: body}, nil
}

// parseHeader splits "chunked 1.0,<metadata_length>,<body_length>".
func parseHeader(line string) (metadataLength, bodyLength int, err error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 || parts[0] != protocolVersion {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadHeader, line)
	}
	if metadataLength, err = strconv.Atoi(parts[1]); err != nil || metadataLength < 0 {
		return 0, 0, fmt.Errorf("%w: metadata length in %q", ErrBadHeader, line)
	}
	if bodyLength, err = strconv.Atoi(parts[2]); err != nil || bodyLength < 0 {
		return 0, 0, fmt.Errorf("%w: body length in %q", ErrBadHeader, line)
	}
	return metadataLength, bodyLength, nil
}
