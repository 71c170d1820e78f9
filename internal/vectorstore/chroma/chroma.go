package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"medlit/internal/vectorstore"
)

// Client is a minimal REST client to a Chroma server. Collections are
// created on first use and the name-to-id mapping is cached; Chroma handles
// embedding server-side, so documents travel as plain text.
type Client struct {
	baseURL string
	client  *http.Client

	mu  sync.Mutex
	ids map[string]string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		ids:     make(map[string]string),
	}
}

var _ vectorstore.Backend = (*Client)(nil)

func (c *Client) Add(ctx context.Context, collection string, ids, documents []string, metadatas []map[string]any) error {
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return err
	}
	body := map[string]any{
		"ids":       ids,
		"documents": documents,
		"metadatas": metadatas,
	}
	return c.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/add", c.baseURL, id), body, nil)
}

func (c *Client) Query(ctx context.Context, collection, text string, where map[string]any, limit int) (vectorstore.QueryResult, error) {
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return vectorstore.QueryResult{}, err
	}
	body := map[string]any{
		"query_texts": []string{text},
		"n_results":   limit,
		"include":     []string{"documents", "metadatas", "distances"},
	}
	if where != nil {
		body["where"] = where
	}
	var resp struct {
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/query", c.baseURL, id), body, &resp); err != nil {
		return vectorstore.QueryResult{}, err
	}
	out := vectorstore.QueryResult{}
	if len(resp.Documents) > 0 {
		out.Documents = resp.Documents[0]
	}
	if len(resp.Metadatas) > 0 {
		out.Metadatas = resp.Metadatas[0]
	}
	if len(resp.Distances) > 0 {
		out.Distances = resp.Distances[0]
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, collection string, ids []string, where map[string]any) (vectorstore.GetResult, error) {
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return vectorstore.GetResult{}, err
	}
	body := map[string]any{
		"include": []string{"metadatas"},
	}
	if len(ids) > 0 {
		body["ids"] = ids
	}
	if where != nil {
		body["where"] = where
	}
	var resp struct {
		IDs       []string         `json:"ids"`
		Metadatas []map[string]any `json:"metadatas"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/get", c.baseURL, id), body, &resp); err != nil {
		return vectorstore.GetResult{}, err
	}
	return vectorstore.GetResult{IDs: resp.IDs, Metadatas: resp.Metadatas}, nil
}

func (c *Client) Count(ctx context.Context, collection string) (int, error) {
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return 0, err
	}
	var count int
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/count", c.baseURL, id), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Reset drops the collection. The next write recreates it empty.
func (c *Client) Reset(ctx context.Context, collection string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/api/v1/collections/%s", c.baseURL, collection), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma delete collection failed: %w", err)
	}
	defer resp.Body.Close()
	// 404 means it was never created; nothing to drop.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma delete collection error %d: %s", resp.StatusCode, string(body))
	}
	c.mu.Lock()
	delete(c.ids, collection)
	c.mu.Unlock()
	return nil
}

func (c *Client) collectionID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if id, ok := c.ids[name]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	body := map[string]any{"name": name, "get_or_create": true}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections", c.baseURL), body, &resp); err != nil {
		return "", fmt.Errorf("get or create collection %q: %w", name, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("get or create collection %q: empty id in response", name)
	}
	c.mu.Lock()
	c.ids[name] = resp.ID
	c.mu.Unlock()
	return resp.ID, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma POST %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chroma POST %s error %d: %s", url, resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode chroma response: %w", err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma GET %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chroma GET %s error %d: %s", url, resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode chroma response: %w", err)
		}
	}
	return nil
}
