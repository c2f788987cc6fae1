// Package models defines the core data structures used throughout the application.
package models

import (
	"time"
)

// DefaultEvidenceLimit is the number of search results kept per claim.
const DefaultEvidenceLimit = 4

// EvidenceItem is a single search-derived source for a claim.
// Excerpt is filled in after collection and may stay empty.
type EvidenceItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Excerpt string `json:"excerpt,omitempty"`
}

// VerificationResult is the verdict text plus the evidence it was built from,
// in the same order the evidence was numbered in the prompt.
type VerificationResult struct {
	Answer   string         `json:"answer"`
	Evidence []EvidenceItem `json:"evidence"`
}

// Sender identifies who produced a chat turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatTurn is one entry of a client-side chat history.
type ChatTurn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Video is the record kept for every transcribed upload.
type Video struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	TranscriptFile string    `json:"transcript_file"`
	Transcript     string    `json:"transcript"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// AuditLog represents an API request audit entry.
type AuditLog struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestSize  int64     `json:"request_size"`
	ResponseCode int       `json:"response_code"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// VerifyRequest is the request body for the verify endpoint.
type VerifyRequest struct {
	Claim string `json:"claim"`
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Transcript string `json:"transcript"`
	Question   string `json:"question"`
}

// ChatResponse carries the model's answer to a chat question.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// UploadResponse is returned after a video has been transcribed.
type UploadResponse struct {
	ID         string `json:"id"`
	Transcript string `json:"transcript"`
	File       string `json:"file"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
