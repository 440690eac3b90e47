package main

import (
	"errors"
	"fmt"
)

// Sentinel errors for the orchestration core.
//
// Use errors.Is() to classify failures:
//
//	if errors.Is(err, ErrTranscriptUnavailable) {
//		// skip this video, continue with siblings
//	}
var (
	// ErrTranscriptUnavailable means the video has no caption track.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrGenerationFailed means the text-generation collaborator returned an
	// empty or unusable response.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrImageFetchDegraded marks the soft image-search failure. The pipeline
	// never aborts on it; the article proceeds with fewer or no images.
	ErrImageFetchDegraded = errors.New("image fetch degraded")

	// ErrPublishFailed means the publishing platform rejected the article.
	ErrPublishFailed = errors.New("publish failed")

	// ErrUnknownNiche means the active-niche selector names a niche that is
	// not configured. Fails the run before any network activity.
	ErrUnknownNiche = errors.New("unknown niche")

	// ErrConfigInvalid means the configuration failed validation at load.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrStateCorrupt means the processed-records file could not be parsed.
	// Recovered by reinitializing to an empty store.
	ErrStateCorrupt = errors.New("state store corrupt")
)

// StageError wraps a pipeline stage failure with enough context to report it
// without aborting sibling videos or languages.
type StageError struct {
	Niche   string
	VideoID string
	Stage   string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("niche %s video %s stage %s: %v", e.Niche, e.VideoID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}
