package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultMediumAPIURL = "https://api.medium.com/v1"

// MediumSettings holds publishing collaborator credentials.
type MediumSettings struct {
	AccessToken string
	AuthorID    string
	APIURL      string // override for tests
}

// MediumClient publishes article drafts through the Medium REST API.
type MediumClient struct {
	settings MediumSettings
	client   *http.Client
}

// NewMediumClient creates a publishing client.
func NewMediumClient(settings MediumSettings) *MediumClient {
	if settings.APIURL == "" {
		settings.APIURL = defaultMediumAPIURL
	}
	return &MediumClient{
		settings: settings,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type mediumPostRequest struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	PublishStatus string   `json:"publishStatus"`
}

type mediumPostResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

// Publish posts the draft. When the draft carries a publication id, the post
// goes to that publication; otherwise to the author's profile. Always a
// separate post per call, so at-least-once reprocessing yields extra drafts
// rather than corrupted articles.
func (c *MediumClient) Publish(ctx context.Context, draft *ArticleDraft) (*PublishedRef, error) {
	endpoint := fmt.Sprintf("%s/users/%s/posts", c.settings.APIURL, c.settings.AuthorID)
	if draft.PublicationID != "" {
		endpoint = fmt.Sprintf("%s/publications/%s/posts", c.settings.APIURL, draft.PublicationID)
	}

	payload, err := json.Marshal(mediumPostRequest{
		Title:         draft.Title,
		ContentFormat: "markdown",
		Content:       draft.Body,
		Tags:          draft.Tags,
		PublishStatus: draft.PublishStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.settings.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrPublishFailed, resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed mediumPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrPublishFailed, err)
	}

	return &PublishedRef{ID: parsed.Data.ID, URL: parsed.Data.URL}, nil
}
