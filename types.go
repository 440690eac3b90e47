package main

import "time"

// VideoRef identifies a source video discovered on a channel. The transcript
// is fetched lazily by the pipeline, not at listing time.
type VideoRef struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// ImageRole marks where an image is placed in the article.
type ImageRole string

const (
	RoleHeader ImageRole = "header"
	RoleInline ImageRole = "inline"
)

// Image is a selected illustration with its attribution line.
type Image struct {
	URL         string    `json:"url"`
	Attribution string    `json:"attribution"`
	Role        ImageRole `json:"role"`
}

// ArticleDraft is the publish-ready output of one pipeline run for a single
// (video, language) pair.
type ArticleDraft struct {
	Niche         string    `json:"niche"`
	Language      string    `json:"language"`
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Tags          []string  `json:"tags"`
	Images        []Image   `json:"images"`
	PublishStatus string    `json:"publish_status"`
	PublicationID string    `json:"publication_id,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// PublishedRef is the platform's handle for a published article.
type PublishedRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ItemStatus represents the outcome of processing one (video, language) pair
type ItemStatus string

const (
	StatusPublished ItemStatus = "published"
	StatusSkipped   ItemStatus = "skipped"
	StatusFailed    ItemStatus = "failed"
)

// ItemResult tracks the outcome of one (video, language) pair.
type ItemResult struct {
	VideoID  string
	Language string
	Status   ItemStatus
	Filename string
	URL      string
	Err      error
}

// NicheReport aggregates outcomes for one niche run.
type NicheReport struct {
	Niche     string
	Published int
	Skipped   int
	Failed    int
	Items     []ItemResult
	Err       error
}

// Attempted reports how many (video, language) pairs the niche actually
// worked on this run, excluding items skipped as already processed.
func (r *NicheReport) Attempted() int {
	return r.Published + r.Failed
}

// RunSummary is the coordinator's aggregate over all selected niches.
type RunSummary struct {
	RunID   string
	Reports []*NicheReport
}

// Failed reports whether any niche attempted work but published nothing, or
// failed outright before processing items. Individual item failures do not
// fail the run as long as the niche made progress.
func (s *RunSummary) Failed() bool {
	for _, r := range s.Reports {
		if r.Err != nil {
			return true
		}
		if r.Attempted() > 0 && r.Published == 0 {
			return true
		}
	}
	return false
}
