package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/storelaunch/internal/logger"
)

// Sentinel errors for the two failure kinds of a provisioning call.
var (
	ErrTransport       = errors.New("provisioning request failed")
	ErrServerRejection = errors.New("provisioning request rejected")
)

// ServerError is a non-2xx response. Message comes from the body's
// "message" field when present.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

func (e *ServerError) Unwrap() error { return ErrServerRejection }

// TransportError is a request that never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// Provisioner issues the provisioning request. A nil error means the
// service accepted it; the response body is not consumed.
type Provisioner interface {
	Provision(ctx context.Context, req Request) error
}

// ProvisionerFunc adapts a function to Provisioner.
type ProvisionerFunc func(ctx context.Context, req Request) error

func (f ProvisionerFunc) Provision(ctx context.Context, req Request) error { return f(ctx, req) }

// maxErrorBody bounds how much of a failure response is read.
const maxErrorBody = 1 << 20

// HTTPClient POSTs provisioning requests as JSON to a fixed endpoint.
type HTTPClient struct {
	endpoint string
	http     *http.Client
}

// NewHTTPClient returns a client for endpoint. A zero timeout means none.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

var _ Provisioner = (*HTTPClient)(nil)

// Provision sends req. Any 2xx status is success.
func (c *HTTPClient) Provision(ctx context.Context, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling provisioning request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug("POST %s (subdomain=%s, %d bytes)", c.endpoint, req.Subdomain, len(data))
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Drain so the connection can be reused; the body carries no progress.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return &ServerError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp),
	}
}

// errorMessage reads the "message" field of a failure body, falling back to
// the status code.
func errorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
}
