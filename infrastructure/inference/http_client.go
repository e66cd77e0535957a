package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/pkg/errors"
)

// HTTPClient calls an external relationship inference service over
// JSON/HTTP. One request carries one batch of node summaries; the
// response is the candidate list for that batch.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient creates an inference client for the given base URL
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type inferRequest struct {
	Nodes []ports.NodeSummary `json:"nodes"`
}

type inferResponse struct {
	Relationships []ports.RelationshipCandidate `json:"relationships"`
}

// Infer sends one batch to the service and returns its candidates
func (c *HTTPClient) Infer(ctx context.Context, batch []ports.NodeSummary) ([]ports.RelationshipCandidate, error) {
	body, err := json.Marshal(inferRequest{Nodes: batch})
	if err != nil {
		return nil, errors.NewInternalError("failed to encode inference request").WithCause(err)
	}

	url := c.baseURL + "/v1/relationships/infer"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternalError("failed to build inference request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalError("inference", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a bounded amount of the body for the error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewExternalError("inference",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet))
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.NewExternalError("inference", fmt.Errorf("malformed response: %w", err))
	}

	c.logger.Debug("inference batch completed",
		zap.Int("nodes", len(batch)),
		zap.Int("candidates", len(out.Relationships)),
		zap.Duration("elapsed", time.Since(start)))
	return out.Relationships, nil
}
