package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrotamil/support-engine/internal/config"
	"github.com/astrotamil/support-engine/internal/matching"
	"github.com/astrotamil/support-engine/internal/observability"
	"github.com/astrotamil/support-engine/internal/storage"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "api.db")

	db, err := storage.Open(ctx, "sqlite", cfg.Database.SQLite.Path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.InitSchema(ctx, db))

	engine := matching.NewEngine(matching.DefaultConfig())
	faqs := storage.NewFAQRepository(db)
	question := "What services do you provide?"
	require.NoError(t, faqs.Create(ctx, &storage.FaqEntry{
		Question: question,
		Answer:   "We provide astrology consultations.",
		Keywords: engine.ExtractKeywords(question),
		Category: "services",
	}))

	router, err := NewRouter(observability.NopLogger(), cfg, db)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/chat", map[string]string{
		"session_id": "api-test",
		"message":    "What services do you provide?",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "api-test", body["session_id"])
	assert.Equal(t, "faq", body["response_type"])
	assert.Equal(t, "We provide astrology consultations.", body["ai_response"])
	assert.Equal(t, "What services do you provide?", body["matched_question"])
	assert.Equal(t, "services", body["category"])
}

func TestChatEndpointEmptyMessage(t *testing.T) {
	srv := testServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/chat", map[string]string{
		"session_id": "api-test",
		"message":    "  ",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Message cannot be empty", body["error"])
}

func TestHandoffEndpointFlow(t *testing.T) {
	srv := testServer(t)

	// Start a conversation first so the session exists.
	resp, _ := postJSON(t, srv.URL+"/api/v1/chat", map[string]string{
		"session_id": "handoff-test",
		"message":    "something nothing matches at all",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, srv.URL+"/api/v1/handoff", map[string]string{
		"session_id":      "handoff-test",
		"name":            "Priya",
		"phone":           "+91 98765 43210",
		"problem_summary": "refund not received",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["reference_number"], 8)

	// Duplicate submission reports the queued ticket.
	resp, body = postJSON(t, srv.URL+"/api/v1/handoff", map[string]string{
		"session_id":      "handoff-test",
		"name":            "Priya",
		"phone":           "+91 98765 43210",
		"problem_summary": "refund not received",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "pending", body["status"])
}

func TestHandoffEndpointUnknownSession(t *testing.T) {
	srv := testServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/handoff", map[string]string{
		"session_id":      "missing",
		"name":            "Priya",
		"phone":           "9876543210",
		"problem_summary": "x",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid session", body["error"])
}

func TestHandoffEndpointInvalidPhone(t *testing.T) {
	srv := testServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/handoff", map[string]string{
		"session_id":      "any",
		"name":            "Priya",
		"phone":           "call me maybe",
		"problem_summary": "x",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please enter a valid phone number", body["phone"])
}

func TestHistoryEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, _ := postJSON(t, srv.URL+"/api/v1/chat", map[string]string{
		"session_id": "history-test",
		"message":    "What services do you provide?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	histResp, err := http.Get(srv.URL + "/api/v1/conversations/history-test/history")
	require.NoError(t, err)
	defer histResp.Body.Close()
	assert.Equal(t, http.StatusOK, histResp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&body))
	assert.Equal(t, "history-test", body["session_id"])
	assert.Equal(t, float64(2), body["total_messages"])

	missing, err := http.Get(srv.URL + "/api/v1/conversations/nope/history")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
