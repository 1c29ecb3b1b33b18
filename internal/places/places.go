// Package places provides the paginated business-search source. The
// orchestrator treats any failure here as "no more results for this query".
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Business is one record returned by the search source.
type Business struct {
	Name    string
	Website string
	Address string
	City    string
	State   string
}

// PageRequest describes one page of a text-search query. Cursor is the opaque
// continuation token from the previous page, empty for the first.
type PageRequest struct {
	Query    string
	Cursor   string
	PageSize int
}

// Page is one page of results plus the cursor for the next, empty when the
// query is exhausted.
type Page struct {
	Items      []Business
	NextCursor string
}

// Source fetches pages of businesses for a text query.
type Source interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
}

// Client implements Source against the Places text-search HTTP API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient builds a Client; baseURL falls back to the public endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://places.googleapis.com/v1/places:searchText"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type searchRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		WebsiteURI       string `json:"websiteUri"`
		FormattedAddress string `json:"formattedAddress"`
	} `json:"places"`
	NextPageToken string `json:"nextPageToken"`
}

// FetchPage executes one text-search page. Non-2xx statuses are transport
// errors.
func (c *Client) FetchPage(ctx context.Context, req PageRequest) (Page, error) {
	payload, err := json.Marshal(searchRequest{
		TextQuery: req.Query,
		PageSize:  req.PageSize,
		PageToken: req.Cursor,
	})
	if err != nil {
		return Page{}, fmt.Errorf("encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return Page{}, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask",
		"places.displayName,places.websiteUri,places.formattedAddress,nextPageToken")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Page{}, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Page{}, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("search status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Page{}, fmt.Errorf("decode search response: %w", err)
	}

	page := Page{NextCursor: decoded.NextPageToken}
	for _, place := range decoded.Places {
		city, state := splitAddress(place.FormattedAddress)
		page.Items = append(page.Items, Business{
			Name:    place.DisplayName.Text,
			Website: place.WebsiteURI,
			Address: place.FormattedAddress,
			City:    city,
			State:   state,
		})
	}
	return page, nil
}

// splitAddress pulls a best-effort city and state out of a formatted address
// of the shape "street, city, ST zip, country".
func splitAddress(addr string) (city, state string) {
	parts := strings.Split(addr, ",")
	if len(parts) >= 3 {
		city = strings.TrimSpace(parts[len(parts)-3])
		stateZip := strings.Fields(strings.TrimSpace(parts[len(parts)-2]))
		if len(stateZip) > 0 {
			state = stateZip[0]
		}
	}
	return city, state
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
