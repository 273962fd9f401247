package contentrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const searchPath = "/api/-default-/public/search/versions/1/search"

// Searcher is the consumer-side contract of the repository client.
type Searcher interface {
	// Search returns the normalized snapshots of every content-bearing node
	// under the given root, recursively. A transport or API failure returns
	// an error and no snapshots.
	Search(ctx context.Context, rootID string) ([]DocumentSnapshot, error)
}

// Client talks to the content repository's search API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a repository search client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Transport: transport, Timeout: timeoutDuration},
		logger: logger,
	}
}

type searchRequest struct {
	Query  searchQuery  `json:"query"`
	Paging searchPaging `json:"paging"`
}

type searchQuery struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

type searchPaging struct {
	MaxItems  int `json:"maxItems"`
	SkipCount int `json:"skipCount"`
}

type searchResponse struct {
	List struct {
		Entries []struct {
			Entry rawNode `json:"entry"`
		} `json:"entries"`
	} `json:"list"`
}

// Search queries all content nodes that have the given node as an ancestor.
func (c *Client) Search(ctx context.Context, rootID string) ([]DocumentSnapshot, error) {
	c.logger.Info("Searching content repository", zap.String("root_id", rootID))

	maxItems := c.cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 1000
	}

	parentRef := "workspace://SpacesStore/" + rootID
	reqBody := searchRequest{
		Query: searchQuery{
			Query:    fmt.Sprintf("+ANCESTOR:%q AND +TYPE:\"cm:content\"", parentRef),
			Language: "afts",
		},
		Paging: searchPaging{MaxItems: maxItems, SkipCount: 0},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("repository search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("repository search returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	snapshots := make([]DocumentSnapshot, 0, len(decoded.List.Entries))
	for _, item := range decoded.List.Entries {
		snapshots = append(snapshots, item.Entry.toSnapshot())
	}

	c.logger.Info("Repository search completed",
		zap.String("root_id", rootID),
		zap.Int("documents", len(snapshots)))

	return snapshots, nil
}
