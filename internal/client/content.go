// Content store client (spots served by the CMS API)
//
// Env:
//   - CONTENT_API_URL: base URL (e.g. https://cms.localtrip.example/api)
//   - CONTENT_API_KEY: read token sent as Bearer

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/model"
)

type ContentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type spotListResponse struct {
	Data []model.Spot `json:"data"`
}

func NewContentClient(cfg config.ContentConfig) *ContentClient {
	return &ContentClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *ContentClient) IsConfigured() bool {
	return c.baseURL != ""
}

// GET /spots - spots matching locale/city/tags
func (c *ContentClient) SearchSpots(ctx context.Context, query model.SpotQuery) ([]model.Spot, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("content API not configured")
	}

	q := url.Values{}
	if query.Locale != "" {
		q.Set("locale", query.Locale)
	}
	if query.City != "" {
		q.Set("city", query.City)
	}
	if len(query.Tags) > 0 {
		q.Set("tags", strings.Join(query.Tags, ","))
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/spots?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to content API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content API returned status %d: %s", resp.StatusCode, string(body))
	}

	var list spotListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if query.Limit > 0 && len(list.Data) > query.Limit {
		list.Data = list.Data[:query.Limit]
	}
	return list.Data, nil
}
