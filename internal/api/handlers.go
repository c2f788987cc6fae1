// Package api provides the HTTP handlers, middleware and router.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/factchecker/factlens/internal/database"
	"github.com/factchecker/factlens/internal/models"
	"github.com/factchecker/factlens/internal/transcribe"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const version = "1.0.0"

// Verifier checks a single claim.
type Verifier interface {
	Verify(ctx context.Context, claim string) (*models.VerificationResult, error)
}

// Chatter answers a question about a transcript.
type Chatter interface {
	Chat(ctx context.Context, transcript, question string) (string, error)
}

// Ingester turns an uploaded video into a saved transcript.
type Ingester interface {
	Ingest(ctx context.Context, video io.Reader, originalName string) (*transcribe.Result, error)
}

// Handler contains all HTTP handlers.
type Handler struct {
	verifier Verifier
	chat     Chatter
	ingester Ingester
	store    database.Store
}

// NewHandler creates a new handler.
func NewHandler(verifier Verifier, chat Chatter, ingester Ingester, store database.Store) *Handler {
	return &Handler{
		verifier: verifier,
		chat:     chat,
		ingester: ingester,
		store:    store,
	}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Verify handles claim verification requests.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.verifier.Verify(r.Context(), req.Claim)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			writeError(w, status, "Claim is required.")
			return
		}
		log.Error().Err(err).Msg("Verification failed")
		writeError(w, status, "Verification failed.")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Chat answers one question about a transcript.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.chat.Chat(r.Context(), req.Transcript, req.Question)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			writeError(w, status, "Transcript and question are required.")
			return
		}
		log.Error().Err(err).Msg("Chat failed")
		writeError(w, status, "Failed to get response from the language model.")
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Answer: answer})
}

// Upload transcribes a multipart "video" upload and records it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("video")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	result, err := h.ingester.Ingest(r.Context(), file, header.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Transcription failed")
		writeError(w, statusFor(err), err.Error())
		return
	}

	video := &models.Video{
		ID:             uuid.New().String(),
		Filename:       header.Filename,
		TranscriptFile: result.File,
		Transcript:     result.Transcript,
		UploadedAt:     time.Now().UTC(),
	}
	if err := h.store.SaveVideo(r.Context(), video); err != nil {
		log.Error().Err(err).Msg("Failed to save video record")
		writeError(w, http.StatusInternalServerError, "Failed to save video record")
		return
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{
		ID:         video.ID,
		Transcript: result.Transcript,
		File:       result.File,
	})
}

// GetVideo returns a video record by ID.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get video")
		writeError(w, http.StatusInternalServerError, "Failed to get video")
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// ListVideos returns paginated video records.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 20)

	videos, err := h.store.ListVideos(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list videos")
		writeError(w, http.StatusInternalServerError, "Failed to list videos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": videos,
		"limit":  limit,
		"offset": offset,
	})
}

// GetAuditLogs returns paginated audit logs.
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)

	logs, err := h.store.GetAuditLogs(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get audit logs")
		writeError(w, http.StatusInternalServerError, "Failed to get audit logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
