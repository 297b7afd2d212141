package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
)

const maxResponseBodySize = 1024 * 1024 // 1MB max worker response

// HTTPTransport speaks the plain JSON worker protocol: the delegation
// request is POSTed to {base}/workers/{type} and the worker answers
// with a flat JSON object of outputs. A non-2xx status with an
// {"error": "..."} body is a worker-reported failure; a body that does
// not decode is a protocol violation.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ protocol.WorkerTransport = (*HTTPTransport)(nil)

func NewHTTPTransport(baseURL string, logger *slog.Logger) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		// The per-invocation deadline arrives on ctx, so the client
		// itself carries no timeout.
		client: &http.Client{},
		logger: logger.With("module", "http_transport"),
	}
}

func (t *HTTPTransport) Send(ctx context.Context, request *models.DelegationRequest) (map[string]any, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delegation request: %w", err)
	}

	url := fmt.Sprintf("%s/workers/%s", t.baseURL, request.WorkerType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	t.logger.DebugContext(ctx, "Sending delegation request", "url", url, "request_id", request.ID)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			t.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read worker response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, workerFailure(resp.StatusCode, body)
	}

	var outputs map[string]any

	err = json.Unmarshal(body, &outputs)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable response body: %v", ErrProtocol, err)
	}

	return outputs, nil
}

func (t *HTTPTransport) Close(_ context.Context) error {
	t.client.CloseIdleConnections()

	return nil
}

func workerFailure(status int, body []byte) error {
	var failure struct {
		Error string `json:"error"`
	}

	err := json.Unmarshal(body, &failure)
	if err == nil && failure.Error != "" {
		return fmt.Errorf("%w: %s", ErrWorkerFailed, failure.Error)
	}

	return fmt.Errorf("%w: status %d", ErrWorkerFailed, status)
}
