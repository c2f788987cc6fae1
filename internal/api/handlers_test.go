package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/factchecker/factlens/internal/config"
	"github.com/factchecker/factlens/internal/database"
	"github.com/factchecker/factlens/internal/models"
	"github.com/factchecker/factlens/internal/transcribe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, claim string) (*models.VerificationResult, error) {
	args := m.Called(ctx, claim)
	if v := args.Get(0); v != nil {
		return v.(*models.VerificationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, transcript, question string) (string, error) {
	args := m.Called(ctx, transcript, question)
	return args.String(0), args.Error(1)
}

type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, video io.Reader, name string) (*transcribe.Result, error) {
	data, _ := io.ReadAll(video)
	args := m.Called(ctx, string(data), name)
	if v := args.Get(0); v != nil {
		return v.(*transcribe.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type testServer struct {
	router   http.Handler
	verifier *MockVerifier
	chat     *MockChatter
	ingester *MockIngester
	store    database.Store
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RateLimits.RequestsPerMinute = 1000
	if mutate != nil {
		mutate(cfg)
	}

	store, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ts := &testServer{
		verifier: new(MockVerifier),
		chat:     new(MockChatter),
		ingester: new(MockIngester),
		store:    store,
	}
	handler := NewHandler(ts.verifier, ts.chat, ts.ingester, store)
	ts.router = NewRouter(cfg, handler, store)
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestVerify(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.verifier.On("Verify", mock.Anything, "The sky is green").Return(&models.VerificationResult{
		Answer: "FALSE",
		Evidence: []models.EvidenceItem{
			{Title: "a", Link: "https://a", Snippet: "sa", Excerpt: "ea"},
			{Title: "b", Link: "https://b", Snippet: "sb"},
		},
	}, nil)

	rec := ts.do(postJSON("/api/verify", `{"claim":"The sky is green"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FALSE", resp.Answer)
	require.Len(t, resp.Evidence, 2)
	assert.Equal(t, "ea", resp.Evidence[0].Excerpt)
	assert.NotContains(t, rec.Body.String(), `"excerpt":""`)
	ts.verifier.AssertExpectations(t)
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid body",
			body:       `{"claim":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name:       "blank claim",
			body:       `{"claim":"  "}`,
			err:        fmt.Errorf("%w: claim is required", models.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantError:  "Claim is required.",
		},
		{
			name:       "search down",
			body:       `{"claim":"x"}`,
			err:        fmt.Errorf("%w: %w", models.ErrVerificationFailed, models.ErrSearchUnavailable),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Verification failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			if tt.err != nil {
				ts.verifier.On("Verify", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := ts.do(postJSON("/api/verify", tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec))
		})
	}
}

func TestChat(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.chat.On("Chat", mock.Anything, "we met at noon", "when?").Return("At noon.", nil)

	rec := ts.do(postJSON("/api/chat", `{"transcript":"we met at noon","question":"when?"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"At noon."}`, rec.Body.String())
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing fields",
			err:        fmt.Errorf("%w: transcript and question are required", models.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantError:  "Transcript and question are required.",
		},
		{
			name:       "provider failure",
			err:        fmt.Errorf("%w: gemini: status 500", models.ErrGenerationFailed),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to get response from the language model.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("", tt.err)

			rec := ts.do(postJSON("/api/chat", `{"transcript":"","question":"q"}`))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec))
		})
	}
}

func multipartUpload(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_ThenGetVideo(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.ingester.On("Ingest", mock.Anything, "video-bytes", "talk.mp4").
		Return(&transcribe.Result{Transcript: "hello everyone", File: "talk.mp4.txt"}, nil)

	rec := ts.do(multipartUpload(t, "video", "talk.mp4", "video-bytes"))

	require.Equal(t, http.StatusOK, rec.Code)
	var uploaded models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, "hello everyone", uploaded.Transcript)
	assert.Equal(t, "talk.mp4.txt", uploaded.File)
	require.NotEmpty(t, uploaded.ID)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/videos/"+uploaded.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var video models.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &video))
	assert.Equal(t, "talk.mp4", video.Filename)
	assert.Equal(t, "hello everyone", video.Transcript)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/videos", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), uploaded.ID)
}

func TestUpload_NoFile(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(multipartUpload(t, "attachment", "talk.mp4", "x"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", decodeError(t, rec))
	ts.ingester.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_TranscriptionFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.ingester.On("Ingest", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: no audio track", models.ErrTranscriptionFailed))

	rec := ts.do(multipartUpload(t, "video", "silent.mp4", "x"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "no audio track")
}

func TestGetVideo_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/videos/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decodeError(t, rec))
}

func TestMaxBodyBytes(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.MaxBodyBytes = 16
	})

	rec := ts.do(postJSON("/api/verify", `{"claim":"this body is longer than sixteen bytes"}`))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	ts.verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimits.RequestsPerMinute = 2
	})

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, ts.do(httptest.NewRequest(http.MethodGet, "/api/videos", nil)).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAuditLogging(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/videos/missing", nil)
	req.Header.Set("X-Request-ID", "req-123")
	ts.do(req)

	assert.Eventually(t, func() bool {
		logs, err := ts.store.GetAuditLogs(context.Background(), 10, 0)
		return err == nil && len(logs) == 1 && logs[0].RequestID == "req-123" && logs[0].ResponseCode == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "req-123")
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST /api/verify")

	ts = newTestServer(t, func(cfg *config.Config) { cfg.Server.EnableUI = false })
	rec = ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: x", models.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("video 1: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrVerificationFailed, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err))
	}
}
