package api

import (
	"github.com/tushartg/chunkstream/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecordingResponse represents one catalog entry in API responses
type RecordingResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Direction  string `json:"direction"`
	CapturedAt string `json:"captured_at"`
	SizeBytes  int64  `json:"size_bytes"`
}

// ServerConfig holds configuration for the debug server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// RecordingCatalog defines the catalog operations the server exposes
type RecordingCatalog interface {
	List() ([]storage.RecordingInfo, error)
	Get(id string) (storage.RecordingInfo, error)
	Delete(id string) error
}
