package sora

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sorastudio/internal/domain"
	"sorastudio/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("sora: api key is required")

// Model is the only generation model this service requests.
const Model = "sora-2"

// Options configures the Sora API client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against a Sora-compatible video generation API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// SubmitRequest captures the inputs for one generation submission.
type SubmitRequest struct {
	Prompt   string
	Settings domain.VideoSettings
}

// QueryResult is the normalized provider state for one task. Fields the
// provider omits stay zero; JobStatus maps the loose status vocabulary into
// the closed domain enum.
type QueryResult struct {
	TaskID           string
	Status           string
	VideoURL         string
	CoverURL         string
	EnhancedPrompt   string
	StatusUpdateTime string
}

// JobStatus maps the provider status onto the domain enum. Anything unknown
// or absent reads as pending so a flaky provider never looks like success.
func (r *QueryResult) JobStatus() domain.JobStatus {
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case "processing":
		return domain.JobStatusProcessing
	case "completed":
		return domain.JobStatusCompleted
	case "failed":
		return domain.JobStatusFailed
	default:
		return domain.JobStatusPending
	}
}

// ProviderError carries the HTTP status and raw body of a failed provider
// call. The body is diagnostic text only, never authoritative state.
type ProviderError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("sora: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sora: status %d", e.StatusCode)
}

type submitPayload struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model"`
	Orientation string   `json:"orientation"`
	Size        string   `json:"size"`
	Duration    int      `json:"duration"`
	Watermark   bool     `json:"watermark"`
	Private     bool     `json:"private"`
	Images      []string `json:"images"`
}

type submitResponse struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type queryResponse struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	VideoURL         string `json:"video_url"`
	CoverURL         string `json:"cover_url"`
	EnhancedPrompt   string `json:"enhanced_prompt"`
	StatusUpdateTime string `json:"status_update_time"`
}

type errorResponse struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://yunwu.ai"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.apiKey != infra.PlaceholderAPIKey
}

// Submit starts a generation task and returns the provider task id. The
// provider answers with either `id` or `task_id`; both are accepted.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("sora: prompt is required")
	}
	payload := submitPayload{
		Prompt:      prompt,
		Model:       Model,
		Orientation: string(req.Settings.Orientation),
		Size:        string(req.Settings.Size),
		Duration:    req.Settings.Duration,
		Watermark:   false,
		Private:     false,
		Images:      []string{},
	}
	raw, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/video/create", payload)
	if err != nil {
		return "", err
	}
	var decoded submitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("sora: decode submit response: %w", err)
	}
	taskID := decoded.ID
	if taskID == "" {
		taskID = decoded.TaskID
	}
	if taskID == "" {
		return "", errors.New("sora: submit response missing task id")
	}
	c.logger.Debug().Str("task_id", taskID).Str("status", decoded.Status).Msg("sora: task created")
	return taskID, nil
}

// Query fetches the provider-side state of a task.
func (c *Client) Query(ctx context.Context, taskID string) (*QueryResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, errors.New("sora: task id is required")
	}
	endpoint := c.baseURL + "/v1/video/query?id=" + url.QueryEscape(taskID)
	raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var decoded queryResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("sora: decode query response: %w", err)
	}
	return &QueryResult{
		TaskID:           decoded.ID,
		Status:           decoded.Status,
		VideoURL:         decoded.VideoURL,
		CoverURL:         decoded.CoverURL,
		EnhancedPrompt:   decoded.EnhancedPrompt,
		StatusUpdateTime: decoded.StatusUpdateTime,
	}, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("sora: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("sora: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sora: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sora: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Message:    extractMessage(raw),
		}
	}
	return raw, nil
}

// extractMessage pulls a human-readable message out of an error body. The
// provider is inconsistent about the field and sometimes nests objects, so
// string values are preferred and anything else is reserialized verbatim.
func extractMessage(raw []byte) string {
	var decoded errorResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, field := range []json.RawMessage{decoded.Message, decoded.Error} {
		if len(field) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(field, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		return string(field)
	}
	return ""
}
