package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to an external cross-encoder reranking service. The service
// is optional: availability is probed once per process and cached, and the
// retrieval pipeline silently falls back to fusion scores when the probe
// fails or the service is not configured.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	probeOnce sync.Once
	available bool
}

func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Available reports whether the reranking service answered its health probe.
// The probe runs at most once; the result holds for the process lifetime.
func (c *Client) Available(ctx context.Context) bool {
	c.probeOnce.Do(func() {
		if c.baseURL == "" {
			c.logger.Info("reranker not configured, fusion scores will rank results")
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("reranker probe failed, fusion scores will rank results", "error", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			c.logger.Warn("reranker probe rejected", "status", resp.Status)
			return
		}
		c.available = true
		c.logger.Info("reranker available", "url", c.baseURL)
	})
	return c.available
}

func (c *Client) Rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"query": query,
		"texts": texts,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rerank status: %s", resp.Status)
	}

	var rerankResp struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(rerankResp.Scores) != len(texts) {
		return nil, fmt.Errorf("rerank scores/texts mismatch: %d/%d", len(rerankResp.Scores), len(texts))
	}
	return rerankResp.Scores, nil
}
