package upstream

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

	"go.uber.org/zap"
)

// APIError is a failed upstream call: an HTTP error status or a
// {"success": false} envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream request failed with status %d", e.StatusCode)
}

// APIMessage returns the upstream-envelope message, when one was extracted.
func (e *APIError) APIMessage() string { return e.Message }

// IsConflict reports whether the error is a court/slot-taken conflict,
// detected by status code 409 or by "409" appearing in the message.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return true
	}
	return strings.Contains(err.Error(), "409")
}

// Client is the shared request helper for the upstream booking API. It
// resolves the configured base URL, attaches a bearer token from the
// injected credential provider and decodes the success/error envelope.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialProvider
	logger  *zap.Logger
}

func NewClient(baseURL string, creds CredentialProvider, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		creds:   creds,
		logger:  logger,
	}
}

type envelopeError struct {
	Message string `json:"message"`
}

// envelope is the upstream's response wrapper. Success is a pointer so
// endpoints without an envelope pass through untouched.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   *envelopeError  `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e *envelope) errorMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to serialize request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read upstream response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		// Best effort: non-envelope payloads simply leave env zero-valued.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("upstream call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &APIError{StatusCode: resp.StatusCode, Message: env.errorMessage()}
	}
	if env.Success != nil && !*env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.errorMessage()}
	}

	if out == nil {
		return nil
	}
	payload := raw
	if len(env.Data) > 0 {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}
