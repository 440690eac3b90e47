package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	settingsFile string
	nicheName    string
	videoURL     string
	apiKey       string
	skipPublish  bool
	debugMode    bool
)

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tubescribe",
	Short: "Turn YouTube transcripts into publish-ready Medium articles",
	Long: `tubescribe discovers new videos on configured channels, transforms their
transcripts into polished articles per niche and language, and publishes
them to Medium as drafts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get API key
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return fmt.Errorf("API key required: use --api-key flag or ANTHROPIC_API_KEY environment variable")
		}

		if debugMode {
			SetDebugMode(true)
		}

		if err := ensureConfigExists(settingsFile); err != nil {
			return fmt.Errorf("ensuring config exists: %w", err)
		}

		settings, err := LoadSettings(settingsFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := run(ctx, settings)
		if err != nil {
			return err
		}
		if summary.Failed() {
			return fmt.Errorf("run %s finished with failures", summary.RunID)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&settingsFile, "config", filepath.Join(defaultConfigDir, "settings.yaml"), "Path to settings file")
	rootCmd.Flags().StringVar(&nicheName, "niche", "", "Niche to process (overrides active_niche; \"all\" processes every niche)")
	rootCmd.Flags().StringVar(&videoURL, "video", "", "Process a single video URL instead of listing the channel")
	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "Anthropic API key")
	rootCmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "Generate and save articles without publishing")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func run(ctx context.Context, settings *Settings) (*RunSummary, error) {
	generator, err := NewGenerator(apiKey, settings)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	youtubeSettings, err := youtubeSettingsFromEnv()
	if err != nil {
		return nil, err
	}
	youtube := NewYouTubeClient(youtubeSettings)
	images := NewImageClient(os.Getenv("PEXELS_API_KEY"), "")
	medium := NewMediumClient(MediumSettings{
		AccessToken: os.Getenv("MEDIUM_ACCESS_TOKEN"),
		AuthorID:    os.Getenv("MEDIUM_AUTHOR_ID"),
	})

	store, err := NewStateStore(settings.StateFile)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	pipeline := NewPipeline(youtube, generator, images, settings.Images)
	waiter := NewPublishWaiter(settings.PublishCooldown.Std())
	runner := NewNicheRunner(youtube, pipeline, medium, store, waiter, settings)
	runner.SetSkipPublish(skipPublish)

	if videoURL != "" {
		return runSingleVideo(ctx, settings, runner)
	}

	coordinator := NewCoordinator(settings, runner)
	return coordinator.Run(ctx, nicheName)
}

// runSingleVideo handles the --video mode: exactly one niche, one video.
func runSingleVideo(ctx context.Context, settings *Settings, runner *NicheRunner) (*RunSummary, error) {
	selector := nicheName
	if selector == "" {
		selector = settings.ActiveNiche
	}
	if selector == "all" {
		return nil, fmt.Errorf("%w: --video requires a single --niche", ErrConfigInvalid)
	}

	niches, err := settings.SelectNiches(selector)
	if err != nil {
		return nil, err
	}

	report, err := runner.RunSingle(ctx, niches[0], videoURL)
	if err != nil {
		return nil, err
	}
	return &RunSummary{RunID: "single", Reports: []*NicheReport{report}}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
