// Command backfill seeds the processed-records state file from an existing
// articles directory, so adopting the state store on prior output does not
// cause republishing.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

type stateData struct {
	Version   string                          `json:"version"`
	UpdatedAt time.Time                       `json:"updated_at"`
	Processed map[string]map[string]time.Time `json:"processed"`
}

var (
	nicheRe = regexp.MustCompile(`(?m)^niche:\s*"([^"]*)"`)
	videoRe = regexp.MustCompile(`(?m)^source_video:\s*"([^"]*)"`)
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: backfill <articles-directory> <state-file>")
	}

	articlesDir := os.Args[1]
	stateFile := os.Args[2]

	state, err := loadState(stateFile)
	if err != nil {
		log.Fatal(err)
	}

	added := 0
	err = filepath.WalkDir(articlesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		niche, videoID, ok := extractHeader(path)
		if !ok {
			log.Printf("No niche/source_video header in %s, skipping", path)
			return nil
		}

		if state.Processed[niche] == nil {
			state.Processed[niche] = make(map[string]time.Time)
		}
		if _, exists := state.Processed[niche][videoID]; exists {
			return nil
		}
		state.Processed[niche][videoID] = time.Now()
		added++
		log.Printf("Recording %s/%s from %s", niche, videoID, filepath.Base(path))
		return nil
	})
	if err != nil {
		log.Fatalf("Walking %s: %v", articlesDir, err)
	}

	if err := saveState(stateFile, state); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Recorded %d new entries in %s\n", added, stateFile)
}

func extractHeader(path string) (niche, videoID string, ok bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", false
	}

	nicheMatch := nicheRe.FindSubmatch(content)
	videoMatch := videoRe.FindSubmatch(content)
	if len(nicheMatch) < 2 || len(videoMatch) < 2 || len(nicheMatch[1]) == 0 || len(videoMatch[1]) == 0 {
		return "", "", false
	}
	return string(nicheMatch[1]), string(videoMatch[1]), true
}

func loadState(path string) (*stateData, error) {
	state := &stateData{
		Version:   "1.0",
		Processed: make(map[string]map[string]time.Time),
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	if err := json.Unmarshal(content, state); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	if state.Processed == nil {
		state.Processed = make(map[string]map[string]time.Time)
	}
	return state, nil
}

func saveState(path string, state *stateData) error {
	state.UpdatedAt = time.Now()

	encoded, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return os.WriteFile(path, encoded, 0644)
}
