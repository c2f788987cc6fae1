package models

import "errors"

// Error categories. Callers wrap these with fmt.Errorf("...: %w", ...) and
// the HTTP layer maps them to status codes with errors.Is.
var (
	// ErrValidation marks a request rejected before any network call.
	ErrValidation = errors.New("validation error")

	// ErrSearchUnavailable means the search provider could not be reached or parsed.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrGenerationFailed means the text-generation call failed or returned a malformed envelope.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrVerificationFailed wraps any non-recoverable step of a claim verification.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrTranscriptionFailed means the transcription script failed or produced bad output.
	ErrTranscriptionFailed = errors.New("transcription failed")

	ErrNotFound = errors.New("not found")
)
