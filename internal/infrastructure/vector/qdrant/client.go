package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

const scrollPageSize = 256

// Client talks to qdrant over its HTTP API. It stores one point per chunk
// with the full chunk metadata in the payload, so the lexical index can be
// rebuilt from the collection alone.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// pointID derives a stable qdrant point id from the chunk identity, so
// reindexing the same document upserts instead of accumulating duplicates.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func (c *Client) IndexChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	if err := c.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, ch := range chunks {
		points = append(points, point{
			ID:     pointID(ch.ID),
			Vector: vectors[i],
			Payload: map[string]any{
				"chunk_id":      ch.ID,
				"document_name": ch.DocumentName,
				"document_path": ch.DocumentPath,
				"chunk_index":   ch.ChunkIndex,
				"page_number":   ch.PageNumber,
				"is_table":      ch.IsTable,
				"text":          ch.Text,
			},
		})
	}

	reqBody := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, url, reqBody, nil)
}

func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.ScoredResult, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp); err != nil {
		return nil, err
	}

	out := make([]domain.ScoredResult, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		res := resultFromPayload(r.Payload)
		res.VectorScore = r.Score
		out = append(out, res)
	}
	return out, nil
}

// Count reports the number of points in the collection. A missing
// collection counts as empty rather than an error, so a fresh deployment
// reports an empty corpus instead of failing queries.
func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPost, url, map[string]any{"exact": true}, &countResp)
	if err != nil {
		if isNotFoundStatus(err) {
			return 0, nil
		}
		return 0, err
	}
	return countResp.Result.Count, nil
}

// ScrollAll pages through the whole collection and reconstructs the chunk
// corpus from point payloads.
func (c *Client) ScrollAll(ctx context.Context) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	var offset any

	url := fmt.Sprintf("%s/collections/%s/points/scroll", c.baseURL, c.collection)
	for {
		reqBody := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			reqBody["offset"] = offset
		}

		var scrollResp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := c.do(ctx, http.MethodPost, url, reqBody, &scrollResp); err != nil {
			if isNotFoundStatus(err) {
				return nil, nil
			}
			return nil, err
		}

		for _, p := range scrollResp.Result.Points {
			chunks = append(chunks, chunkFromPayload(p.Payload))
		}
		if scrollResp.Result.NextPageOffset == nil {
			return chunks, nil
		}
		offset = scrollResp.Result.NextPageOffset
	}
}

func (c *Client) DeleteByDocumentPath(ctx context.Context, documentPath string) error {
	reqBody := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "document_path",
					"match": map[string]any{"value": documentPath},
				},
			},
		},
	}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, nil); err != nil {
		if isNotFoundStatus(err) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if already exists (depends on version/config).
	if resp.StatusCode == http.StatusConflict {
		c.markCollectionEnsured(vectorSize)
		return nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

func (c *Client) do(ctx context.Context, method, url string, reqBody any, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode qdrant response: %w", err)
	}
	return nil
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant status: %s", e.status)
}

func isNotFoundStatus(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func resultFromPayload(payload map[string]any) domain.ScoredResult {
	return domain.ScoredResult{
		ID:           getStringPayload(payload, "chunk_id"),
		Text:         getStringPayload(payload, "text"),
		DocumentName: getStringPayload(payload, "document_name"),
		ChunkIndex:   getIntPayload(payload, "chunk_index"),
		PageNumber:   getIntPayload(payload, "page_number"),
		IsTable:      getBoolPayload(payload, "is_table"),
	}
}

func chunkFromPayload(payload map[string]any) domain.Chunk {
	return domain.Chunk{
		ID:           getStringPayload(payload, "chunk_id"),
		Text:         getStringPayload(payload, "text"),
		DocumentName: getStringPayload(payload, "document_name"),
		DocumentPath: getStringPayload(payload, "document_path"),
		ChunkIndex:   getIntPayload(payload, "chunk_index"),
		PageNumber:   getIntPayload(payload, "page_number"),
		IsTable:      getBoolPayload(payload, "is_table"),
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	// JSON numbers decode as float64.
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int(f)
}

func getBoolPayload(payload map[string]any, key string) bool {
	b, ok := payload[key].(bool)
	return ok && b
}
