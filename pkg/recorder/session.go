package recorder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/tushartg/chunkstream/pkg/codec"
)

// Errors
var (
	ErrNotConfigured  = &ModeError{"harness is not in record or playback mode"}
	ErrExhausted      = &ModeError{"recording has no more results for this call site"}
	ErrOutputMismatch = &ModeError{"replayed output differs from the recording"}
)

// Producer executes the real data-source call behind a named call site.
// Results must be values the metadata codec can encode.
type Producer func() (any, error)

// Harness routes data-source calls through a recording. It starts
// uninitialized; Record or Playback selects the mode exactly once.
// Everything written to Output during a run is captured alongside the call
// results so a playback run can be verified byte-for-byte.
type Harness struct {
	session session
	output  bytes.Buffer
}

// NewHarness creates an uninitialized harness.
func NewHarness() *Harness {
	return &Harness{session: uninitializedSession{}}
}

// Output returns the destination stream to hand to the record writer under
// test.
func (h *Harness) Output() io.Writer {
	return &h.output
}

// OutputBytes returns everything written to Output so far.
func (h *Harness) OutputBytes() []byte {
	return h.output.Bytes()
}

// Record switches the harness into live mode. Call results are accumulated
// and persisted to path when Stop is called.
func (h *Harness) Record(path string) {
	h.session = newLiveSession(path)
}

// Playback switches the harness into replay mode, loading the recording at
// path.
func (h *Harness) Playback(path string) error {
	session, err := loadReplaySession(path)
	if err != nil {
		return err
	}
	h.session = session
	return nil
}

// Get resolves one call for the named site: live mode executes produce and
// records the result, replay mode pops the next recorded result without
// touching produce.
func (h *Harness) Get(site string, produce Producer) (any, error) {
	return h.session.get(site, produce)
}

// NextPart starts a new recording part, one per protocol round.
func (h *Harness) NextPart() error {
	return h.session.nextPart()
}

// Stop finishes the session: live mode persists the recording, replay mode
// verifies the captured output against the recording.
func (h *Harness) Stop() error {
	return h.session.stop(h.output.Bytes())
}

type session interface {
	get(site string, produce Producer) (any, error)
	nextPart() error
	stop(output []byte) error
}

// uninitializedSession rejects everything until a mode is selected.
type uninitializedSession struct{}

func (uninitializedSession) get(string, Producer) (any, error) {
	return nil, ErrNotConfigured
}

func (uninitializedSession) nextPart() error {
	return ErrNotConfigured
}

func (uninitializedSession) stop([]byte) error {
	return ErrNotConfigured
}

// liveSession delegates to the real producer and accumulates results.
type liveSession struct {
	path  string
	parts []*codec.Object
}

func newLiveSession(path string) *liveSession {
	return &liveSession{path: path, parts: []*codec.Object{codec.NewObject()}}
}

func (s *liveSession) get(site string, produce Producer) (any, error) {
	result, err := produce()
	if err != nil {
		return nil, err
	}
	part := s.parts[len(s.parts)-1]
	var results []any
	if existing, ok := part.Get(site); ok {
		results = existing.([]any)
	}
	part.Set(site, append(results, result))
	return result, nil
}

func (s *liveSession) nextPart() error {
	s.parts = append(s.parts, codec.NewObject())
	return nil
}

func (s *liveSession) stop(output []byte) error {
	inputs := make([]any, 0, len(s.parts))
	for _, part := range s.parts {
		inputs = append(inputs, part)
	}

	document := codec.NewObject()
	document.Set("inputs", inputs)
	document.Set("results", string(output))

	encoded, err := codec.NewMetadataCodec().Encode(document)
	if err != nil {
		return fmt.Errorf("encoding recording: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(file)
	if _, err := gz.Write(encoded); err != nil {
		gz.Close()
		file.Close()
		return fmt.Errorf("writing recording: %w", err)
	}
	if err := gz.Close(); err != nil {
		file.Close()
		return fmt.Errorf("finalizing recording: %w", err)
	}
	return file.Close()
}

// replaySession pops pre-recorded results in call order.
type replaySession struct {
	parts    []*codec.Object
	part     int
	cursors  map[string]int
	expected string
}

func loadReplaySession(path string) (*replaySession, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer gz.Close()

	encoded, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}

	decoded, err := codec.NewMetadataCodec().Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding recording: %w", err)
	}
	document, ok := decoded.(*codec.Object)
	if !ok {
		return nil, fmt.Errorf("decoding recording: not an object")
	}

	rawInputs, _ := document.Get("inputs")
	inputs, ok := rawInputs.([]any)
	if !ok {
		return nil, fmt.Errorf("decoding recording: missing inputs")
	}
	parts := make([]*codec.Object, 0, len(inputs))
	for _, rawPart := range inputs {
		part, ok := rawPart.(*codec.Object)
		if !ok {
			return nil, fmt.Errorf("decoding recording: malformed part")
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		parts = append(parts, codec.NewObject())
	}

	rawResults, _ := document.Get("results")
	expected, ok := rawResults.(string)
	if !ok {
		return nil, fmt.Errorf("decoding recording: missing results")
	}

	return &replaySession{
		parts:    parts,
		cursors:  make(map[string]int),
		expected: expected,
	}, nil
}

func (s *replaySession) get(site string, _ Producer) (any, error) {
	part := s.parts[s.part]
	raw, ok := part.Get(site)
	if !ok {
		return nil, fmt.Errorf("%w: site %q", ErrExhausted, site)
	}
	results := raw.([]any)
	cursor := s.cursors[site]
	if cursor >= len(results) {
		return nil, fmt.Errorf("%w: site %q", ErrExhausted, site)
	}
	s.cursors[site] = cursor + 1
	return results[cursor], nil
}

func (s *replaySession) nextPart() error {
	if s.part+1 >= len(s.parts) {
		return fmt.Errorf("%w: no more parts", ErrExhausted)
	}
	s.part++
	s.cursors = make(map[string]int)
	return nil
}

func (s *replaySession) stop(output []byte) error {
	if string(output) != s.expected {
		return fmt.Errorf("%w: %d bytes produced, %d recorded",
			ErrOutputMismatch, len(output), len(s.expected))
	}
	return nil
}
