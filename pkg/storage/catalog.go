// Package storage persists an index of captured recordings so the CLI and
// the debug server can enumerate and verify past sessions.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/tushartg/chunkstream/pkg/codec"
)

// ErrRecordingNotFound is returned when no recording exists under an id.
var ErrRecordingNotFound = errors.New("storage: recording not found")

// RecordingInfo describes one captured recording file.
type RecordingInfo struct {
	ID         string
	Name       string
	Path       string
	Direction  string // "read" or "write"
	CapturedAt time.Time
	SizeBytes  int64
}

// Catalog is a pebble-backed index of recordings keyed by ksuid.
type Catalog struct {
	db    *pebble.DB
	codec *codec.MetadataCodec
}

// OpenCatalog opens or creates the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	return &Catalog{db: db, codec: codec.NewMetadataCodec()}, nil
}

// Register stores a new recording descriptor and returns its generated id.
func (c *Catalog) Register(info RecordingInfo) (string, error) {
	id := ksuid.New()
	info.ID = id.String()

	data, err := c.encode(info)
	if err != nil {
		return "", err
	}
	if err := c.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return "", fmt.Errorf("registering recording: %w", err)
	}
	return info.ID, nil
}

// Get returns the descriptor stored under id.
func (c *Catalog) Get(id string) (RecordingInfo, error) {
	key, err := ksuid.Parse(id)
	if err != nil {
		return RecordingInfo{}, fmt.Errorf("%w: bad id %q", ErrRecordingNotFound, id)
	}

	data, closer, err := c.db.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return RecordingInfo{}, fmt.Errorf("%w: %s", ErrRecordingNotFound, id)
		}
		return RecordingInfo{}, err
	}
	defer closer.Close()

	return c.decode(key.String(), data)
}

// List returns every registered recording in key order.
func (c *Catalog) List() ([]RecordingInfo, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var recordings []RecordingInfo
	for iter.First(); iter.Valid(); iter.Next() {
		key, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("corrupt catalog key: %w", err)
		}
		info, err := c.decode(key.String(), iter.Value())
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, info)
	}
	return recordings, iter.Error()
}

// Delete removes the descriptor stored under id.
func (c *Catalog) Delete(id string) error {
	key, err := ksuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: bad id %q", ErrRecordingNotFound, id)
	}
	return c.db.Delete(key.Bytes(), pebble.NoSync)
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) encode(info RecordingInfo) ([]byte, error) {
	obj := codec.NewObject()
	obj.Set("name", info.Name)
	obj.Set("path", info.Path)
	obj.Set("direction", info.Direction)
	obj.Set("captured_at", info.CapturedAt.UTC().Format(time.RFC3339Nano))
	obj.Set("size_bytes", info.SizeBytes)

	data, err := c.codec.Encode(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding recording descriptor: %w", err)
	}
	return data, nil
}

func (c *Catalog) decode(id string, data []byte) (RecordingInfo, error) {
	decoded, err := c.codec.Decode(data)
	if err != nil {
		return RecordingInfo{}, fmt.Errorf("decoding recording descriptor: %w", err)
	}
	obj, ok := decoded.(*codec.Object)
	if !ok {
		return RecordingInfo{}, fmt.Errorf("decoding recording descriptor: not an object")
	}

	info := RecordingInfo{ID: id}
	if v, ok := obj.Get("name"); ok {
		info.Name, _ = v.(string)
	}
	if v, ok := obj.Get("path"); ok {
		info.Path, _ = v.(string)
	}
	if v, ok := obj.Get("direction"); ok {
		info.Direction, _ = v.(string)
	}
	if v, ok := obj.Get("captured_at"); ok {
		if s, ok := v.(string); ok {
			info.CapturedAt, _ = time.Parse(time.RFC3339Nano, s)
		}
	}
	if v, ok := obj.Get("size_bytes"); ok {
		info.SizeBytes, _ = v.(int64)
	}
	return info, nil
}
