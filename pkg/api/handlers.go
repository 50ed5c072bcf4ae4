package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tushartg/chunkstream/pkg/storage"
)

// Server holds the debug server state
type Server struct {
	catalog RecordingCatalog
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new debug server
func NewServer(catalog RecordingCatalog, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		catalog: catalog,
		config:  config,
		metrics: metrics,
	}
}

// handleHealth reports server liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListRecordings lists every recording registered in the catalog
func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	infos, err := s.catalog.List()
	if err != nil {
		s.metrics.RecordCatalogOperation("list", false)
		sendError(w, fmt.Sprintf("Failed to list recordings: %v", err), http.StatusInternalServerError)
		return
	}

	recordings := make([]RecordingResponse, 0, len(infos))
	for _, info := range infos {
		recordings = append(recordings, toRecordingResponse(info))
	}

	s.metrics.RecordCatalogOperation("list", true)
	sendSuccess(w, map[string]interface{}{"recordings": recordings})
}

// handleGetRecording returns one catalog entry by id
func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.metrics.RecordCatalogOperation("get", false)
		sendError(w, "Recording ID is required", http.StatusBadRequest)
		return
	}

	info, err := s.catalog.Get(id)
	if err != nil {
		s.metrics.RecordCatalogOperation("get", false)
		if errors.Is(err, storage.ErrRecordingNotFound) {
			sendError(w, "Recording not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to get recording: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordCatalogOperation("get", true)
	sendSuccess(w, toRecordingResponse(info))
}

// handleDeleteRecording removes a catalog entry by id
func (s *Server) handleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.metrics.RecordCatalogOperation("delete", false)
		sendError(w, "Recording ID is required", http.StatusBadRequest)
		return
	}

	if err := s.catalog.Delete(id); err != nil {
		s.metrics.RecordCatalogOperation("delete", false)
		if errors.Is(err, storage.ErrRecordingNotFound) {
			sendError(w, "Recording not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to delete recording: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordCatalogOperation("delete", true)
	sendSuccess(w, map[string]string{"message": "Recording deleted successfully"})
}

func toRecordingResponse(info storage.RecordingInfo) RecordingResponse {
	return RecordingResponse{
		ID:         info.ID,
		Name:       info.Name,
		Path:       info.Path,
		Direction:  info.Direction,
		CapturedAt: info.CapturedAt.Format(time.RFC3339Nano),
		SizeBytes:  info.SizeBytes,
	}
}
