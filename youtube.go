package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

const defaultDataAPIURL = "https://www.googleapis.com/youtube/v3/search"

// YouTubeSettings holds the video source collaborator configuration.
type YouTubeSettings struct {
	APIKey           string // YouTube Data API key
	DataAPIURL       string // Listing endpoint (override for tests)
	TranscriptAPIKey string
	TranscriptAPIURL string
	Retries          int
	CacheDir         string
}

// YouTubeClient lists recent channel videos and fetches transcripts.
type YouTubeClient struct {
	settings  YouTubeSettings
	client    *http.Client
	converter *md.Converter
}

// NewYouTubeClient creates a client with a 30s request timeout.
func NewYouTubeClient(settings YouTubeSettings) *YouTubeClient {
	if settings.DataAPIURL == "" {
		settings.DataAPIURL = defaultDataAPIURL
	}
	if settings.Retries == 0 {
		settings.Retries = 5
	}
	if settings.CacheDir == "" {
		settings.CacheDir = filepath.Join(".cache", "youtube")
	}

	return &YouTubeClient{
		settings:  settings,
		client:    &http.Client{Timeout: 30 * time.Second},
		converter: md.NewConverter("", true, nil),
	}
}

// youtubeSettingsFromEnv reads the video source configuration from the
// environment, failing fast before any niche work starts rather than at the
// first transcribe attempt.
func youtubeSettingsFromEnv() (YouTubeSettings, error) {
	settings := YouTubeSettings{
		APIKey:           os.Getenv("YOUTUBE_API_KEY"),
		TranscriptAPIKey: os.Getenv("YOUTUBE_TRANSCRIPT_API_KEY"),
		TranscriptAPIURL: os.Getenv("YOUTUBE_TRANSCRIPT_API_URL"),
	}

	if settings.TranscriptAPIKey == "" || settings.TranscriptAPIURL == "" {
		return YouTubeSettings{}, fmt.Errorf("%w: YouTube API configuration missing: set YOUTUBE_TRANSCRIPT_API_KEY and YOUTUBE_TRANSCRIPT_API_URL", ErrConfigInvalid)
	}
	if settings.APIKey == "" {
		return YouTubeSettings{}, fmt.Errorf("%w: YouTube API configuration missing: set YOUTUBE_API_KEY", ErrConfigInvalid)
	}
	return settings, nil
}

// searchResponse mirrors the Data API v3 search.list response fields we use.
type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListRecentVideos fetches up to pageSize recent videos from the channel,
// most-recent-first.
func (c *YouTubeClient) ListRecentVideos(ctx context.Context, channelID string, pageSize int) ([]VideoRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.settings.DataAPIURL, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Add("key", c.settings.APIKey)
	q.Add("channelId", channelID)
	q.Add("part", "id,snippet")
	q.Add("type", "video")
	q.Add("order", "date")
	q.Add("maxResults", fmt.Sprintf("%d", pageSize))
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing channel %s: %w", channelID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.Host + req.URL.Path}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	videos := make([]VideoRef, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, VideoRef{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

// FetchTranscript fetches a video transcript in the given language, using a
// local cache if available. Caption markup (tags, entities) is converted to
// plain markdown before the transcript is cached or returned.
func (c *YouTubeClient) FetchTranscript(ctx context.Context, videoID, language string) (string, error) {
	cachePath := filepath.Join(c.settings.CacheDir, videoID+"-"+language)
	if content, err := os.ReadFile(cachePath); err == nil {
		return string(content), nil
	}

	transcript, err := c.fetchTranscriptWithRetries(ctx, videoID, language)
	if err != nil {
		return "", err
	}

	if cleaned, err := c.converter.ConvertString(transcript); err == nil {
		transcript = cleaned
	}

	// Cache result
	os.MkdirAll(c.settings.CacheDir, 0755)
	os.WriteFile(cachePath, []byte(transcript), 0644)

	return transcript, nil
}

func (c *YouTubeClient) fetchTranscriptWithRetries(ctx context.Context, videoID, language string) (string, error) {
	var lastErr error
	for i := 0; i < c.settings.Retries; i++ {
		transcript, err := c.fetchTranscript(ctx, videoID, language)
		if err == nil {
			return transcript, nil
		}
		lastErr = err

		httpErr, ok := err.(*HTTPError)
		if !ok || httpErr.StatusCode != http.StatusTooManyRequests {
			return "", err
		}

		// Exponential backoff between rate-limited attempts
		backoff := time.Duration(1<<uint(i)) * time.Second
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("exceeded max retries after %d attempts: %w", c.settings.Retries, lastErr)
}

func (c *YouTubeClient) fetchTranscript(ctx context.Context, videoID, language string) (string, error) {
	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.settings.TranscriptAPIURL, nil)
	if err != nil {
		return "", err
	}

	q := req.URL.Query()
	q.Add("url", videoURL)
	q.Add("api_key", c.settings.TranscriptAPIKey)
	q.Add("lang", language)
	q.Add("text", "true")
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	debugLog("transcript API response for %s: status=%d", videoID, resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: video %s language %s", ErrTranscriptUnavailable, videoID, language)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: videoURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(string(body)) == "" {
		return "", fmt.Errorf("%w: video %s has empty caption track", ErrTranscriptUnavailable, videoID)
	}

	return string(body), nil
}

// extractVideoID pulls the video id out of a watch URL. Kept for operators
// passing full URLs as channel seed input.
func extractVideoID(videoURL string) (string, error) {
	parsedURL, err := url.Parse(videoURL)
	if err != nil {
		return "", err
	}

	if !strings.Contains(parsedURL.Host, "youtube.com") && !strings.Contains(parsedURL.Host, "youtu.be") {
		return "", fmt.Errorf("not a YouTube URL")
	}

	if strings.Contains(parsedURL.Host, "youtu.be") {
		return strings.TrimPrefix(parsedURL.Path, "/"), nil
	}

	videoID := parsedURL.Query().Get("v")
	if videoID == "" {
		return "", fmt.Errorf("no video ID found in URL")
	}
	return videoID, nil
}
