package main

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Coordinator expands the active-niche selector into sequential niche runs
// and aggregates the outcome. Niches run one at a time: the dominant cost is
// rate-limited external calls, and serialized publishing is what keeps the
// platform's spam detection quiet.
type Coordinator struct {
	settings *Settings
	runner   *NicheRunner
}

// NewCoordinator creates a coordinator over a shared runner.
func NewCoordinator(settings *Settings, runner *NicheRunner) *Coordinator {
	return &Coordinator{settings: settings, runner: runner}
}

// Run resolves the selector (empty means the configured active niche) and
// processes each selected niche fully before the next. Selector resolution
// fails before any network activity.
func (c *Coordinator) Run(ctx context.Context, selector string) (*RunSummary, error) {
	niches, err := c.settings.SelectNiches(selector)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{RunID: uuid.NewString()}
	log.Printf("Run %s: processing %d niche(s)", summary.RunID, len(niches))

	for i, niche := range niches {
		if ctx.Err() != nil {
			break
		}
		log.Printf("[%d/%d] Niche: %s", i+1, len(niches), niche.Name)
		summary.Reports = append(summary.Reports, c.runner.Run(ctx, niche))
	}

	c.logSummary(summary)
	return summary, nil
}

func (c *Coordinator) logSummary(summary *RunSummary) {
	log.Printf("Run %s summary:", summary.RunID)
	for _, r := range summary.Reports {
		if r.Err != nil {
			log.Printf("  %s: failed: %v", r.Niche, r.Err)
			continue
		}
		log.Printf("  %s: %d published, %d skipped, %d failed", r.Niche, r.Published, r.Skipped, r.Failed)
		for _, item := range r.Items {
			if item.Status == StatusFailed {
				log.Printf("    ✗ %s", describeFailure(item))
			}
		}
	}
}
