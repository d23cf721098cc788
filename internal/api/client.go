// Package api is the HTTP client for the document Q&A backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/iksnae/docchat/internal"
)

const (
	// DefaultBaseURL is where the backend listens by default
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds every request
	DefaultTimeout = 30 * time.Second
	// DefaultSummaryCacheSize is the number of summaries kept in memory
	DefaultSummaryCacheSize = 64

	// UnreachableMessage replaces the health message when the backend cannot be reached
	UnreachableMessage = "The server is unreachable."
	// SummaryErrorText replaces a summary that could not be fetched
	SummaryErrorText = "The summary could not be generated."

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// Client talks to the backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	summaries  *lru.Cache
}

// Option configures a Client
type Option func(*Client) error

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithSummaryCacheSize sets how many summaries are cached
func WithSummaryCacheSize(size int) Option {
	return func(c *Client) error {
		if size <= 0 {
			size = DefaultSummaryCacheSize
		}
		cache, err := lru.New(size)
		if err != nil {
			return fmt.Errorf("failed to create summary cache: %w", err)
		}
		c.summaries = cache
		return nil
	}
}

// NewClient creates a client for baseURL; a zero timeout uses DefaultTimeout
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, &internal.ValidationError{Field: "backend.url", Reason: err.Error()}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	opts = append([]Option{WithSummaryCacheSize(DefaultSummaryCacheSize)}, opts...)
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadResponse is returned by POST /upload
type UploadResponse struct {
	Filename string `json:"filename"`
	ID       string `json:"id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// AskResponse is returned by POST /ask/
type AskResponse struct {
	Answer        string   `json:"answer"`
	DocumentTitle string   `json:"document_title"`
	Confidence    *float64 `json:"confidence,omitempty"`
}

type askRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Message string `json:"message"`
}

type documentLocation struct {
	PDFURL string `json:"pdfUrl"`
}

// Upload validates path as a PDF and sends it as multipart field "file"
func (c *Client) Upload(ctx context.Context, path string) (*UploadResponse, error) {
	info, err := InspectPDF(path)
	if err != nil {
		return nil, err
	}
	internal.LogDebug("Uploading %s (%d pages, %d bytes)", path, info.Pages, info.Size)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	var resp UploadResponse
	if err := c.do(ctx, "upload", http.MethodPost, "/upload", &body, writer.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AskQuestion posts a question about documentID
func (c *Client) AskQuestion(ctx context.Context, documentID, question string) (*AskResponse, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, &internal.ValidationError{Field: "documentId", Reason: "must not be empty"}
	}
	if strings.TrimSpace(question) == "" {
		return nil, &internal.ValidationError{Field: "question", Reason: "must not be empty"}
	}

	payload, err := json.Marshal(askRequest{DocumentID: documentID, Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp AskResponse
	if err := c.do(ctx, "ask", http.MethodPost, "/ask/", bytes.NewReader(payload), "application/json", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ask implements internal.Asker
func (c *Client) Ask(ctx context.Context, documentID, question string) (*internal.Answer, error) {
	resp, err := c.AskQuestion(ctx, documentID, question)
	if err != nil {
		return nil, err
	}
	return &internal.Answer{
		Text:          resp.Answer,
		DocumentTitle: resp.DocumentTitle,
		Confidence:    resp.Confidence,
	}, nil
}

// ListDocuments returns every uploaded document
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.do(ctx, "list documents", http.MethodGet, "/documents/", nil, "", &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// Summarize returns the summary of documentID. Summaries are cached per
// document; refresh bypasses and replaces the cached value.
func (c *Client) Summarize(ctx context.Context, documentID string, refresh bool) (string, error) {
	if strings.TrimSpace(documentID) == "" {
		return "", &internal.ValidationError{Field: "documentId", Reason: "must not be empty"}
	}
	if !refresh {
		if cached, ok := c.summaries.Get(documentID); ok {
			internal.LogDebug("Summary cache hit for %s", documentID)
			return cached.(string), nil
		}
	}

	var resp summaryResponse
	if err := c.do(ctx, "summarize", http.MethodGet, "/summarize/"+url.PathEscape(documentID), nil, "", &resp); err != nil {
		return "", err
	}
	c.summaries.Add(documentID, resp.Summary)
	return resp.Summary, nil
}

// ForgetSummary drops the cached summary of documentID
func (c *Client) ForgetSummary(documentID string) {
	c.summaries.Remove(documentID)
}

// Health returns the backend's health message
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DocumentURL returns the location of documentID's PDF. The backend must
// answer with a non-empty pdfUrl field.
func (c *Client) DocumentURL(ctx context.Context, documentID string) (string, error) {
	if strings.TrimSpace(documentID) == "" {
		return "", &internal.ValidationError{Field: "documentId", Reason: "must not be empty"}
	}

	path := "/documents/" + url.PathEscape(documentID)
	var resp documentLocation
	if err := c.do(ctx, "document url", http.MethodGet, path, nil, "", &resp); err != nil {
		return "", err
	}
	if resp.PDFURL == "" {
		return "", &internal.NetworkError{
			Op:  "document url",
			URL: c.baseURL + path,
			Err: fmt.Errorf("response has no pdfUrl"),
		}
	}
	return resp.PDFURL, nil
}

// do sends one request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out interface{}) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	internal.LogDebug("%s %s (request %s)", method, endpoint, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &internal.NetworkError{Op: op, URL: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &internal.NetworkError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(snippet))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &internal.NetworkError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}
