package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const defaultImageAPIURL = "https://api.pexels.com/v1"

// ImageResult is one candidate illustration from the image-search
// collaborator.
type ImageResult struct {
	URL          string
	Photographer string
}

// ImageClient queries the Pexels search API for article illustrations.
type ImageClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewImageClient creates a client. baseURL overrides the Pexels endpoint for
// tests.
func NewImageClient(apiKey, baseURL string) *ImageClient {
	if baseURL == "" {
		baseURL = defaultImageAPIURL
	}
	return &ImageClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// pexelsResponse mirrors the Pexels /v1/search response fields we use.
type pexelsResponse struct {
	Photos []struct {
		Photographer string `json:"photographer"`
		Src          struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// Search returns up to count images matching the query. When a preferred
// photographer is set, matching results are ranked first and non-matching
// ones are used only to fill remaining slots. May return fewer than count,
// including zero.
func (c *ImageClient) Search(ctx context.Context, query string, count int, preferredPhotographer string) ([]ImageResult, error) {
	// Over-fetch so the attribution filter has candidates to discard.
	perPage := count * 3
	if perPage < 10 {
		perPage = 10
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	q := req.URL.Query()
	q.Add("query", query)
	q.Add("per_page", strconv.Itoa(perPage))
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching images for %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: c.baseURL + "/search"}
	}

	var parsed pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing image search response: %w", err)
	}

	results := make([]ImageResult, 0, len(parsed.Photos))
	for _, p := range parsed.Photos {
		if p.Src.Large == "" {
			continue
		}
		results = append(results, ImageResult{URL: p.Src.Large, Photographer: p.Photographer})
	}

	if preferredPhotographer != "" {
		results = rankByPhotographer(results, preferredPhotographer)
	}

	if len(results) > count {
		results = results[:count]
	}
	return results, nil
}

// rankByPhotographer moves the preferred photographer's images to the front,
// preserving relative order in both groups.
func rankByPhotographer(results []ImageResult, photographer string) []ImageResult {
	preferred := make([]ImageResult, 0, len(results))
	rest := make([]ImageResult, 0, len(results))
	for _, r := range results {
		if r.Photographer == photographer {
			preferred = append(preferred, r)
		} else {
			rest = append(rest, r)
		}
	}
	return append(preferred, rest...)
}
