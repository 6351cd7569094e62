package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jzx17/gobulk/pkg/retry"
	"github.com/jzx17/gobulk/pkg/types"
)

// DefaultTimeout bounds one HTTP request when ClientConfig.Timeout is zero
const DefaultTimeout = 30 * time.Second

// Document is a document as returned by the server
type Document map[string]any

// ID returns the document's $id
func (d Document) ID() string {
	id, _ := d["$id"].(string)
	return id
}

// ClientConfig configures the Appwrite REST client
type ClientConfig struct {
	// Endpoint is the API root, e.g. https://cloud.appwrite.io/v1
	Endpoint     string
	ProjectID    string
	APIKey       string
	DatabaseID   string
	CollectionID string

	// Timeout for each HTTP request (default: 30s)
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout (optional)
	HTTPClient *http.Client

	// Logger for request logging (optional, defaults to no-op)
	Logger *zap.Logger
}

// Client performs document operations against one collection
type Client struct {
	baseURL    string
	projectID  string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the configured collection
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, types.NewValidationError("endpoint", "is required")
	}
	if cfg.ProjectID == "" {
		return nil, types.NewValidationError("project_id", "is required")
	}
	if cfg.DatabaseID == "" {
		return nil, types.NewValidationError("database_id", "is required")
	}
	if cfg.CollectionID == "" {
		return nil, types.NewValidationError("collection_id", "is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.Endpoint, "/") +
			"/databases/" + url.PathEscape(cfg.DatabaseID) +
			"/collections/" + url.PathEscape(cfg.CollectionID) +
			"/documents",
		projectID:  cfg.ProjectID,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CreateDocument creates one document
func (c *Client) CreateDocument(ctx context.Context, item CreateItem) (Document, error) {
	body := map[string]any{
		"documentId":  item.DocumentID,
		"data":        item.Data,
		"permissions": nonNil(item.Permissions),
	}

	var doc Document
	if err := c.do(ctx, http.MethodPost, c.baseURL, body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument updates one document. Permissions are only sent when set,
// so an update without them leaves the document's permissions unchanged.
func (c *Client) UpdateDocument(ctx context.Context, item UpdateItem) (Document, error) {
	body := map[string]any{"data": item.Data}
	if len(item.Permissions) > 0 {
		body["permissions"] = item.Permissions
	}

	var doc Document
	if err := c.do(ctx, http.MethodPatch, c.documentURL(item.DocumentID), body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument deletes one document and returns its ID
func (c *Client) DeleteDocument(ctx context.Context, item DeleteItem) (string, error) {
	if err := c.do(ctx, http.MethodDelete, c.documentURL(item.DocumentID), nil, nil); err != nil {
		return "", err
	}
	return item.DocumentID, nil
}

func (c *Client) documentURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// do sends one request and decodes a 2xx body into out. Non-2xx responses
// become *retry.RemoteError.
func (c *Client) do(ctx context.Context, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.projectID)
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Appwrite request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeRemoteError(resp, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorBody is the JSON error envelope returned by Appwrite
type errorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func decodeRemoteError(resp *http.Response, payload []byte) *retry.RemoteError {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(payload))
		if body.Message == "" {
			body.Message = resp.Status
		}
	}

	return &retry.RemoteError{
		Message: body.Message,
		Code:    body.Code,
		Type:    body.Type,
		Response: &retry.Response{
			Status:  resp.StatusCode,
			Message: body.Message,
			Code:    body.Code,
			Type:    body.Type,
		},
	}
}

func nonNil(perms []string) []string {
	if perms == nil {
		return []string{}
	}
	return perms
}
