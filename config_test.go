package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validSettingsYAML = `active_niche: all
publish_status: draft
page_size: 5
publish_cooldown: 45s
state_file: state/processed.json
niches:
  - name: tech
    channel_id: UC111
    source_language: en
    output_languages: [en, de]
    output_directory: articles/tech
  - name: cooking
    channel_id: UC222
    source_language: es
    output_languages: [es]
    output_directory: articles/cooking
    publication_id: pub-42
`

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, validSettingsYAML)

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if settings.PageSize != 5 {
		t.Errorf("PageSize = %d, want 5", settings.PageSize)
	}
	if settings.PublishCooldown.Std() != 45*time.Second {
		t.Errorf("PublishCooldown = %v, want 45s", settings.PublishCooldown.Std())
	}
	if len(settings.Niches) != 2 {
		t.Fatalf("got %d niches, want 2", len(settings.Niches))
	}
	if settings.Niches[1].PublicationID != "pub-42" {
		t.Errorf("cooking publication_id = %q, want pub-42", settings.Niches[1].PublicationID)
	}
	// Unspecified sections fall back to defaults.
	if settings.Agents.Writer.MaxTokens != 6000 {
		t.Errorf("writer max_tokens default = %d, want 6000", settings.Agents.Writer.MaxTokens)
	}
	if settings.Agents.Writer.Model != defaultModel {
		t.Errorf("writer model default = %q, want %q", settings.Agents.Writer.Model, defaultModel)
	}
	if settings.Images.HeaderCount != 1 || settings.Images.InlineCount != 2 {
		t.Errorf("image defaults = %d/%d, want 1/2", settings.Images.HeaderCount, settings.Images.InlineCount)
	}
}

func TestLoadSettingsModelOverride(t *testing.T) {
	path := writeSettings(t, validSettingsYAML+`agents:
  tagger:
    model: claude-haiku-4
`)

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings.Agents.Tagger.Model != "claude-haiku-4" {
		t.Errorf("tagger model = %q, want claude-haiku-4", settings.Agents.Tagger.Model)
	}
	// Token budget still defaults when only the model is overridden.
	if settings.Agents.Tagger.MaxTokens != 200 {
		t.Errorf("tagger max_tokens = %d, want 200", settings.Agents.Tagger.MaxTokens)
	}
	if settings.Agents.Cleaner.Model != defaultModel {
		t.Errorf("cleaner model = %q, want default", settings.Agents.Cleaner.Model)
	}
}

func TestLoadSettingsBadDuration(t *testing.T) {
	path := writeSettings(t, strings.Replace(validSettingsYAML, "45s", "soon", 1))

	if _, err := LoadSettings(path); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("LoadSettings() error = %v, want ErrConfigInvalid", err)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadSettings() should fail on a missing file")
	}
}

func TestSettingsValidate(t *testing.T) {
	base := func() *Settings {
		s := &Settings{
			Niches: []NicheConfig{{
				Name:            "tech",
				ChannelID:       "UC111",
				SourceLanguage:  "en",
				OutputLanguages: []string{"en"},
				OutputDirectory: "articles/tech",
			}},
		}
		s.applyDefaults()
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"valid", func(s *Settings) {}, nil},
		{"no niches", func(s *Settings) { s.Niches = nil }, ErrConfigInvalid},
		{"bad publish status", func(s *Settings) { s.PublishStatus = "live" }, ErrConfigInvalid},
		{"negative page size", func(s *Settings) { s.PageSize = -1 }, ErrConfigInvalid},
		{"empty niche name", func(s *Settings) { s.Niches[0].Name = " " }, ErrConfigInvalid},
		{"empty channel", func(s *Settings) { s.Niches[0].ChannelID = "" }, ErrConfigInvalid},
		{"multi source language", func(s *Settings) { s.Niches[0].SourceLanguage = "en, de" }, ErrConfigInvalid},
		{"no output languages", func(s *Settings) { s.Niches[0].OutputLanguages = nil }, ErrConfigInvalid},
		{"no output directory", func(s *Settings) { s.Niches[0].OutputDirectory = "" }, ErrConfigInvalid},
		{"unknown active niche", func(s *Settings) { s.ActiveNiche = "sports" }, ErrUnknownNiche},
		{
			"duplicate niche names",
			func(s *Settings) { s.Niches = append(s.Niches, s.Niches[0]) },
			ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSelectNiches(t *testing.T) {
	path := writeSettings(t, validSettingsYAML)
	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	t.Run("all in declared order", func(t *testing.T) {
		niches, err := settings.SelectNiches("all")
		if err != nil {
			t.Fatalf("SelectNiches(all) error = %v", err)
		}
		if len(niches) != 2 || niches[0].Name != "tech" || niches[1].Name != "cooking" {
			t.Errorf("SelectNiches(all) order wrong: %v, %v", niches[0].Name, niches[1].Name)
		}
	})

	t.Run("by name", func(t *testing.T) {
		niches, err := settings.SelectNiches("cooking")
		if err != nil {
			t.Fatalf("SelectNiches(cooking) error = %v", err)
		}
		if len(niches) != 1 || niches[0].Name != "cooking" {
			t.Errorf("SelectNiches(cooking) = %d niches", len(niches))
		}
	})

	t.Run("empty uses active niche", func(t *testing.T) {
		niches, err := settings.SelectNiches("")
		if err != nil {
			t.Fatalf("SelectNiches(\"\") error = %v", err)
		}
		if len(niches) != 2 {
			t.Errorf("active_niche all should expand, got %d niches", len(niches))
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, err := settings.SelectNiches("sports"); !errors.Is(err, ErrUnknownNiche) {
			t.Errorf("SelectNiches(sports) error = %v, want ErrUnknownNiche", err)
		}
	})
}

func TestEnsureConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")

	if err := ensureConfigExists(path); err != nil {
		t.Fatalf("ensureConfigExists() error = %v", err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("default settings should load cleanly: %v", err)
	}
	if len(settings.Niches) == 0 {
		t.Error("default settings should configure at least one niche")
	}

	// A second call must not clobber the existing file.
	before, _ := os.ReadFile(path)
	if err := ensureConfigExists(path); err != nil {
		t.Fatalf("second ensureConfigExists() error = %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("existing settings file was rewritten")
	}
}
