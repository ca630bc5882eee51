package sora

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sorastudio/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "sk-test", BaseURL: srv.URL})
}

func TestSubmitSuccess(t *testing.T) {
	var captured map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/video/create" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "task-1", "status": "processing"})
	})

	taskID, err := client.Submit(context.Background(), SubmitRequest{
		Prompt:   "sunset over ocean",
		Settings: domain.VideoSettings{Orientation: domain.OrientationLandscape, Size: domain.VideoSizeLarge, Duration: 10},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if taskID != "task-1" {
		t.Fatalf("taskID = %q", taskID)
	}
	if captured["model"] != Model {
		t.Errorf("model = %v", captured["model"])
	}
	if captured["watermark"] != false || captured["private"] != false {
		t.Errorf("watermark/private flags not forced off: %v %v", captured["watermark"], captured["private"])
	}
	if imgs, ok := captured["images"].([]any); !ok || len(imgs) != 0 {
		t.Errorf("images = %v", captured["images"])
	}
	if captured["duration"] != float64(10) || captured["size"] != "large" {
		t.Errorf("settings not forwarded: %v", captured)
	}
}

func TestSubmitAcceptsTaskIDField(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"task_id": "task-2"})
	})
	taskID, err := client.Submit(context.Background(), SubmitRequest{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if taskID != "task-2" {
		t.Fatalf("taskID = %q", taskID)
	}
}

func TestSubmitMissingTaskID(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "processing"})
	})
	if _, err := client.Submit(context.Background(), SubmitRequest{Prompt: "a cat"}); err == nil {
		t.Fatal("expected error for response without id")
	}
}

func TestSubmitProviderError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error": "quota exhausted"}`))
	})
	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "a cat"})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("StatusCode = %d", provErr.StatusCode)
	}
	if provErr.Message != "quota exhausted" {
		t.Fatalf("Message = %q", provErr.Message)
	}
}

func TestSubmitNestedErrorMessage(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": {"code": "bad_prompt"}}`))
	})
	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "a cat"})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Message != `{"code": "bad_prompt"}` {
		t.Fatalf("Message = %q", provErr.Message)
	}
}

func TestSubmitWithoutCredentials(t *testing.T) {
	client := NewClient(Options{})
	if _, err := client.Submit(context.Background(), SubmitRequest{Prompt: "a cat"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestQueryFieldMapping(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/video/query" || r.URL.Query().Get("id") != "task-9" {
			t.Errorf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 "task-9",
			"status":             "completed",
			"video_url":          "https://x/y.mp4",
			"cover_url":          "https://x/y.jpg",
			"enhanced_prompt":    "a vivid sunset over the ocean",
			"status_update_time": "2026-01-01T00:00:00Z",
		})
	})
	res, err := client.Query(context.Background(), "task-9")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if res.VideoURL != "https://x/y.mp4" || res.CoverURL != "https://x/y.jpg" {
		t.Fatalf("urls not mapped: %+v", res)
	}
	if res.JobStatus() != domain.JobStatusCompleted {
		t.Fatalf("JobStatus = %s", res.JobStatus())
	}
}

func TestQueryUnknownStatusDefaultsToPending(t *testing.T) {
	tests := []string{"", "queued", "IN_PROGRESS?", "unknown"}
	for _, status := range tests {
		res := &QueryResult{Status: status}
		if got := res.JobStatus(); got != domain.JobStatusPending {
			t.Fatalf("status %q mapped to %s, want pending", status, got)
		}
	}
	if got := (&QueryResult{Status: "Processing"}).JobStatus(); got != domain.JobStatusProcessing {
		t.Fatalf("Processing mapped to %s", got)
	}
}

func TestQueryProviderErrorMirrorsStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "task not found"}`))
	})
	_, err := client.Query(context.Background(), "gone")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.StatusCode != http.StatusNotFound || provErr.Message != "task not found" {
		t.Fatalf("unexpected provider error: %+v", provErr)
	}
}
