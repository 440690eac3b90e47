package main

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// videoLister lists recent videos for a channel, most-recent-first.
type videoLister interface {
	ListRecentVideos(ctx context.Context, channelID string, pageSize int) ([]VideoRef, error)
}

// publisher hands a publish-ready draft to the external platform.
type publisher interface {
	Publish(ctx context.Context, draft *ArticleDraft) (*PublishedRef, error)
}

// NicheRunner drives one niche: list candidate videos, filter out processed
// ones, run each survivor through the pipeline per output language, then
// persist, publish, wait and mark. One failing item never halts the niche's
// remaining work.
type NicheRunner struct {
	lister        videoLister
	pipeline      *Pipeline
	publisher     publisher
	store         *StateStore
	waiter        *PublishWaiter
	pageSize      int
	publishStatus string
	skipPublish   bool
}

// NewNicheRunner wires a runner to its collaborators.
func NewNicheRunner(lister videoLister, pipeline *Pipeline, pub publisher, store *StateStore, waiter *PublishWaiter, settings *Settings) *NicheRunner {
	return &NicheRunner{
		lister:        lister,
		pipeline:      pipeline,
		publisher:     pub,
		store:         store,
		waiter:        waiter,
		pageSize:      settings.PageSize,
		publishStatus: settings.PublishStatus,
	}
}

// SetSkipPublish puts the runner in dry-run mode: articles are generated and
// persisted but never published or marked processed.
func (r *NicheRunner) SetSkipPublish(skip bool) {
	r.skipPublish = skip
}

// Run processes the niche and returns its report. A listing failure aborts
// the niche; item failures are recorded and processing continues.
func (r *NicheRunner) Run(ctx context.Context, niche *NicheConfig) *NicheReport {
	report := &NicheReport{Niche: niche.Name}

	videos, err := r.lister.ListRecentVideos(ctx, niche.ChannelID, r.pageSize)
	if err != nil {
		report.Err = fmt.Errorf("listing videos for niche %s: %w", niche.Name, err)
		return report
	}
	log.Printf("Niche %s: %d candidate videos", niche.Name, len(videos))

	for _, video := range videos {
		if ctx.Err() != nil {
			break
		}

		if r.store.HasProcessed(niche.Name, video.ID) {
			log.Printf("Skipping %s: already processed", video.ID)
			report.Skipped++
			report.Items = append(report.Items, ItemResult{VideoID: video.ID, Status: StatusSkipped})
			continue
		}

		r.processVideo(ctx, niche, video, report)
	}

	return report
}

// RunSingle processes exactly one video URL through the niche, bypassing the
// listing page but honoring the processed filter.
func (r *NicheRunner) RunSingle(ctx context.Context, niche *NicheConfig, videoURL string) (*NicheReport, error) {
	videoID, err := extractVideoID(videoURL)
	if err != nil {
		return nil, fmt.Errorf("parsing video URL: %w", err)
	}

	report := &NicheReport{Niche: niche.Name}
	if r.store.HasProcessed(niche.Name, videoID) {
		log.Printf("Skipping %s: already processed", videoID)
		report.Skipped++
		report.Items = append(report.Items, ItemResult{VideoID: videoID, Status: StatusSkipped})
		return report, nil
	}

	r.processVideo(ctx, niche, VideoRef{ID: videoID}, report)
	return report, nil
}

// processVideo runs every output language for one video. The (niche, video)
// record is written after the first successfully published language; a
// later-failing language is reported but not retried on future runs.
func (r *NicheRunner) processVideo(ctx context.Context, niche *NicheConfig, video VideoRef, report *NicheReport) {
	for _, lang := range niche.OutputLanguages {
		if ctx.Err() != nil {
			return
		}

		item := r.processItem(ctx, niche, video, lang)
		report.Items = append(report.Items, item)

		switch item.Status {
		case StatusPublished:
			report.Published++
			if item.URL != "" {
				log.Printf("✓ Published %s (%s): %s", video.ID, lang, item.URL)
			} else {
				log.Printf("✓ Generated %s (%s): %s", video.ID, lang, item.Filename)
			}
		case StatusFailed:
			report.Failed++
			log.Printf("✗ Failed %s (%s): %v", video.ID, lang, item.Err)
		}
	}
}

// processItem runs one (video, language) pair end to end:
// pipeline → persist → publish → wait → mark.
func (r *NicheRunner) processItem(ctx context.Context, niche *NicheConfig, video VideoRef, lang string) ItemResult {
	draft, err := r.pipeline.Run(ctx, niche, video, lang, r.publishStatus)
	if err != nil {
		return ItemResult{VideoID: video.ID, Language: lang, Status: StatusFailed, Err: err}
	}

	filename, err := writeArticleFile(niche.OutputDirectory, draft)
	if err != nil {
		return ItemResult{VideoID: video.ID, Language: lang, Status: StatusFailed,
			Err: fmt.Errorf("persisting article: %w", err)}
	}
	log.Printf("  → Saved %s", filename)

	if r.skipPublish {
		return ItemResult{VideoID: video.ID, Language: lang, Status: StatusPublished, Filename: filename}
	}

	ref, err := r.publisher.Publish(ctx, draft)
	if err != nil {
		return ItemResult{VideoID: video.ID, Language: lang, Status: StatusFailed, Filename: filename, Err: err}
	}

	// Publish → wait → mark. An interrupted wait leaves the pair unmarked
	// so the next run retries it (as a fresh draft).
	if err := r.waiter.Wait(ctx); err != nil {
		return ItemResult{VideoID: video.ID, Language: lang, Status: StatusFailed, Filename: filename,
			Err: fmt.Errorf("interrupted before mark: %w", err)}
	}

	if err := r.store.MarkProcessed(niche.Name, video.ID); err != nil {
		return ItemResult{VideoID: video.ID, Language: lang, Status: StatusFailed, Filename: filename,
			Err: fmt.Errorf("recording processed state: %w", err)}
	}

	return ItemResult{VideoID: video.ID, Language: lang, Status: StatusPublished, Filename: filename, URL: ref.URL}
}

// describeFailure renders an item failure with its stage when available.
func describeFailure(item ItemResult) string {
	if stage := stageOf(item.Err); stage != "" {
		return fmt.Sprintf("%s (%s) stage %s: %v", item.VideoID, item.Language, stage, errors.Unwrap(item.Err))
	}
	return fmt.Sprintf("%s (%s): %v", item.VideoID, item.Language, item.Err)
}
