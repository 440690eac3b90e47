package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// tagCount is the fixed number of tags every article carries.
const tagCount = 5

// transcriptSource fetches raw transcripts for the Transcribe stage.
type transcriptSource interface {
	FetchTranscript(ctx context.Context, videoID, language string) (string, error)
}

// textGenerator covers the four generation stages.
type textGenerator interface {
	Clean(transcript, sourceLang, outputLang string) (string, error)
	Article(cleaned, videoTitle string) (string, error)
	Title(body string) (string, error)
	Tags(body, title string) ([]string, error)
}

// imageSearcher finds candidate illustrations for the Fetch Images stage.
type imageSearcher interface {
	Search(ctx context.Context, query string, count int, preferredPhotographer string) ([]ImageResult, error)
}

// Pipeline is the fixed, ordered chain of stages turning one (video,
// language) pair into a publish-ready ArticleDraft:
//
//	transcribe → clean → article → title → tags → fetch images →
//	embed images → format
//
// Image fetch is the only soft-failing stage; every other failure aborts
// just this pipeline instance.
type Pipeline struct {
	transcripts transcriptSource
	generator   textGenerator
	images      imageSearcher
	imageCfg    ImageSettings
}

// NewPipeline wires the pipeline to its collaborators.
func NewPipeline(transcripts transcriptSource, generator textGenerator, images imageSearcher, imageCfg ImageSettings) *Pipeline {
	return &Pipeline{
		transcripts: transcripts,
		generator:   generator,
		images:      images,
		imageCfg:    imageCfg,
	}
}

// Run drives one (video, language) pair through all stages. Cancellation is
// honored at stage boundaries: an in-progress stage completes, no new stage
// begins after ctx is done.
func (p *Pipeline) Run(ctx context.Context, niche *NicheConfig, video VideoRef, lang, publishStatus string) (*ArticleDraft, error) {
	fail := func(stage string, err error) (*ArticleDraft, error) {
		return nil, &StageError{Niche: niche.Name, VideoID: video.ID, Stage: stage, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("  → Transcribing %s (%s)", video.ID, lang)
	transcript, err := p.transcripts.FetchTranscript(ctx, video.ID, niche.SourceLanguage)
	if err != nil {
		return fail("transcribe", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("  → Cleaning transcript")
	cleaned, err := p.generator.Clean(transcript, niche.SourceLanguage, lang)
	if err != nil {
		return fail("clean", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("  → Writing article")
	body, err := p.generator.Article(cleaned, video.Title)
	if err != nil {
		return fail("article", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("  → Generating title")
	title, err := p.generator.Title(body)
	if err != nil {
		return fail("title", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("  → Generating tags")
	rawTags, err := p.generator.Tags(body, title)
	if err != nil {
		return fail("tags", err)
	}
	tags := normalizeTags(rawTags, niche.Name)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	images := p.fetchImages(ctx, niche, title)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body = embedImages(body, images)

	draft := &ArticleDraft{
		Niche:         niche.Name,
		Language:      lang,
		VideoID:       video.ID,
		Title:         title,
		Body:          body,
		Tags:          tags,
		Images:        images,
		PublishStatus: publishStatus,
		PublicationID: niche.PublicationID,
		GeneratedAt:   time.Now(),
	}
	return draft, nil
}

// fetchImages runs the soft-failing image stage: any error or empty result
// degrades to fewer or no images and never aborts the pipeline.
func (p *Pipeline) fetchImages(ctx context.Context, niche *NicheConfig, title string) []Image {
	want := p.imageCfg.HeaderCount + p.imageCfg.InlineCount
	if want == 0 {
		return nil
	}

	results, err := p.images.Search(ctx, title, want, niche.ImageAttribution)
	if err != nil {
		log.Printf("  ✗ %v: %v", ErrImageFetchDegraded, err)
		return nil
	}
	if len(results) == 0 {
		log.Printf("  ✗ %v: no results for %q", ErrImageFetchDegraded, title)
		return nil
	}

	images := make([]Image, 0, len(results))
	for i, r := range results {
		role := RoleInline
		if i < p.imageCfg.HeaderCount {
			role = RoleHeader
		}
		images = append(images, Image{
			URL:         r.URL,
			Attribution: "Photo by " + r.Photographer,
			Role:        role,
		})
	}
	return images
}

// normalizeTags enforces exactly tagCount tags: extras are truncated, gaps
// are padded deterministically from a default set, skipping duplicates.
func normalizeTags(tags []string, niche string) []string {
	out := make([]string, 0, tagCount)
	seen := make(map[string]bool)
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
		if len(out) == tagCount {
			return out
		}
	}

	defaults := []string{capitalize(niche), "YouTube", "Video", "Content", "Article"}
	for _, t := range defaults {
		if len(out) == tagCount {
			break
		}
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

// embedImages splices image markup into the article body: header images
// before the body, inline images at evenly spaced paragraph breaks. Each
// image keeps its attribution as an italic caption line.
func embedImages(body string, images []Image) string {
	if len(images) == 0 {
		return body
	}

	var header, inline []Image
	for _, img := range images {
		if img.Role == RoleHeader {
			header = append(header, img)
		} else {
			inline = append(inline, img)
		}
	}

	paragraphs := strings.Split(body, "\n\n")

	var b strings.Builder
	for _, img := range header {
		b.WriteString(imageMarkup(img))
		b.WriteString("\n\n")
	}

	// Spread inline images across the body, one per slot, never before the
	// opening paragraph. A collision advances to the next free slot; images
	// that run out of paragraphs go after the body.
	slots := make(map[int]Image, len(inline))
	var trailing []Image
	for i, img := range inline {
		pos := (i + 1) * len(paragraphs) / (len(inline) + 1)
		if pos < 1 {
			pos = 1
		}
		for pos < len(paragraphs) {
			if _, taken := slots[pos]; !taken {
				break
			}
			pos++
		}
		if pos >= len(paragraphs) {
			trailing = append(trailing, img)
			continue
		}
		slots[pos] = img
	}

	for i, para := range paragraphs {
		if img, ok := slots[i]; ok {
			b.WriteString(imageMarkup(img))
			b.WriteString("\n\n")
		}
		b.WriteString(para)
		if i < len(paragraphs)-1 {
			b.WriteString("\n\n")
		}
	}
	for _, img := range trailing {
		b.WriteString("\n\n")
		b.WriteString(imageMarkup(img))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func imageMarkup(img Image) string {
	return fmt.Sprintf("![%s](%s)\n*%s*", img.Attribution, img.URL, img.Attribution)
}

// stageOf extracts the failing stage name from a pipeline error, for
// reporting.
func stageOf(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
