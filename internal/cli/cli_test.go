package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/factchecker/factlens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/verify", func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if strings.TrimSpace(req.Claim) == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"Claim is required."}`)
			return
		}
		fmt.Fprint(w, `{"answer":"FALSE","evidence":[
			{"title":"Sky facts","link":"https://a.example","snippet":"blue"},
			{"title":"Weather","link":"https://b.example","snippet":"storms","excerpt":"green tint"}]}`)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Question == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"Failed to get response from the language model."}`)
			return
		}
		json.NewEncoder(w).Encode(models.ChatResponse{
			Answer: fmt.Sprintf("You asked %q about %d chars", req.Question, len(req.Transcript)),
		})
	})
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("video")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"No file uploaded"}`)
			return
		}
		data, _ := io.ReadAll(file)
		fmt.Fprintf(w, `{"id":"vid-1","transcript":"%d bytes","file":"%s.txt"}`, len(data), header.Filename)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIClient_Verify(t *testing.T) {
	srv := newFakeServer(t)
	client := NewAPIClient(srv.URL+"/", srv.Client())

	result, err := client.Verify(context.Background(), "The sky is green")
	require.NoError(t, err)
	assert.Equal(t, "FALSE", result.Answer)
	require.Len(t, result.Evidence, 2)
	assert.Equal(t, "green tint", result.Evidence[1].Excerpt)

	_, err = client.Verify(context.Background(), " ")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Claim is required.", apiErr.Message)
}

func TestAPIClient_Upload(t *testing.T) {
	srv := newFakeServer(t)
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))

	resp, err := NewAPIClient(srv.URL, srv.Client()).Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "vid-1", resp.ID)
	assert.Equal(t, "10 bytes", resp.Transcript)
	assert.Equal(t, "clip.mp4.txt", resp.File)
}

func TestAPIClient_UploadMissingFile(t *testing.T) {
	_, err := NewAPIClient("http://127.0.0.1:1", http.DefaultClient).Upload(context.Background(), "/no/such/file.mp4")
	assert.Error(t, err)
}

func TestChatSession(t *testing.T) {
	srv := newFakeServer(t)
	session := NewChatSession(NewAPIClient(srv.URL, srv.Client()), "hello world")

	first := session.Ask(context.Background(), "what?")
	second := session.Ask(context.Background(), "fail")

	assert.Equal(t, `You asked "what?" about 11 chars`, first)
	assert.Equal(t, "Error: Could not get answer.", second)
	assert.Equal(t, []models.ChatTurn{
		{Sender: models.SenderUser, Text: "what?"},
		{Sender: models.SenderAssistant, Text: first},
		{Sender: models.SenderUser, Text: "fail"},
		{Sender: models.SenderAssistant, Text: "Error: Could not get answer."},
	}, session.History())
}

func TestChatSession_Run(t *testing.T) {
	srv := newFakeServer(t)
	session := NewChatSession(NewAPIClient(srv.URL, srv.Client()), "abc")

	var out bytes.Buffer
	err := session.Run(context.Background(), strings.NewReader("first\n\nfail\nexit\nignored\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `You asked "first" about 3 chars`)
	assert.Contains(t, out.String(), "Error: Could not get answer.")
	assert.NotContains(t, out.String(), "ignored")
	assert.Len(t, session.History(), 4)
}

func TestRenderVerification(t *testing.T) {
	var out bytes.Buffer
	RenderVerification(&out, "claim", &models.VerificationResult{
		Answer: "TRUE",
		Evidence: []models.EvidenceItem{
			{Title: "One", Link: "https://one"},
			{Title: "Two", Link: "https://two"},
		},
	})

	assert.Equal(t, "Verifying: claim\n\n▶ Verdict:\nTRUE\n\n▶ Evidence used:\n1. One — https://one\n2. Two — https://two\n", out.String())
}

func TestVerifyCmd(t *testing.T) {
	srv := newFakeServer(t)

	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetArgs([]string{"verify", "--api-url", srv.URL, "The sky is green"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "▶ Verdict:\nFALSE")
	assert.Contains(t, out.String(), "2. Weather — https://b.example")
}

func TestChatCmd(t *testing.T) {
	srv := newFakeServer(t)
	transcript := filepath.Join(t.TempDir(), "talk.txt")
	require.NoError(t, os.WriteFile(transcript, []byte("twelve chars"), 0644))

	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetIn(strings.NewReader("summary?\n"))
	root.SetArgs([]string{"chat", "--api-url", srv.URL, "--transcript", transcript})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `You asked "summary?" about 12 chars`)
}

func TestChatCmd_RequiresTranscript(t *testing.T) {
	root := NewRootCmd("test")
	root.SetOut(io.Discard)
	root.SetArgs([]string{"chat"})

	assert.Error(t, root.Execute())
}

func TestConfigInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factlens.yaml")

	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetArgs([]string{"config", "init", path})
	require.NoError(t, root.Execute())
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), "Wrote "+path)

	root = NewRootCmd("test")
	root.SetOut(io.Discard)
	root.SetArgs([]string{"config", "init", path})
	assert.Error(t, root.Execute())
}
