package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".tubescribe"

// Duration wraps time.Duration so YAML values like "30s" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// NicheConfig describes one content vertical: its source channel, languages
// and output destination. Read-only after load; passed by reference into the
// coordinator and runners.
type NicheConfig struct {
	Name             string   `yaml:"name"`
	ChannelID        string   `yaml:"channel_id"`
	SourceLanguage   string   `yaml:"source_language"`
	OutputLanguages  []string `yaml:"output_languages"`
	ImageAttribution string   `yaml:"image_attribution,omitempty"`
	OutputDirectory  string   `yaml:"output_directory"`
	PublicationID    string   `yaml:"publication_id,omitempty"`
}

const defaultModel = "claude-sonnet-4-20250514"

// AgentSettings configures one text-generation stage.
type AgentSettings struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ImageSettings configures the image-search collaborator.
type ImageSettings struct {
	HeaderCount int `yaml:"header_count"`
	InlineCount int `yaml:"inline_count"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	ActiveNiche     string        `yaml:"active_niche"`
	PublishStatus   string        `yaml:"publish_status"`
	PageSize        int           `yaml:"page_size"`
	PublishCooldown Duration      `yaml:"publish_cooldown"`
	StateFile       string        `yaml:"state_file"`
	Niches          []NicheConfig `yaml:"niches"`
	Agents          struct {
		Cleaner AgentSettings `yaml:"cleaner"`
		Writer  AgentSettings `yaml:"writer"`
		Titler  AgentSettings `yaml:"titler"`
		Tagger  AgentSettings `yaml:"tagger"`
	} `yaml:"agents"`
	Images ImageSettings `yaml:"images"`
}

// LoadSettings loads and validates settings from the given YAML file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfigInvalid, path, err)
	}

	settings.applyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func (s *Settings) applyDefaults() {
	if s.ActiveNiche == "" {
		s.ActiveNiche = "all"
	}
	if s.PublishStatus == "" {
		s.PublishStatus = "draft"
	}
	if s.PageSize == 0 {
		s.PageSize = 10
	}
	if s.PublishCooldown == 0 {
		s.PublishCooldown = Duration(30 * time.Second)
	}
	if s.StateFile == "" {
		s.StateFile = filepath.Join(defaultConfigDir, "processed.json")
	}
	agentDefaults := []struct {
		agent       *AgentSettings
		maxTokens   int
		temperature float64
	}{
		{&s.Agents.Cleaner, 4000, 0.0},
		{&s.Agents.Writer, 6000, 0.3},
		{&s.Agents.Titler, 100, 0.5},
		{&s.Agents.Tagger, 200, 0.0},
	}
	for _, d := range agentDefaults {
		if d.agent.MaxTokens == 0 {
			d.agent.MaxTokens = d.maxTokens
			d.agent.Temperature = d.temperature
		}
		if d.agent.Model == "" {
			d.agent.Model = defaultModel
		}
	}
	if s.Images.HeaderCount == 0 {
		s.Images.HeaderCount = 1
	}
	if s.Images.InlineCount == 0 {
		s.Images.InlineCount = 2
	}
}

// Validate checks the configuration before any collaborator is contacted.
func (s *Settings) Validate() error {
	if len(s.Niches) == 0 {
		return fmt.Errorf("%w: no niches configured", ErrConfigInvalid)
	}
	if s.PublishStatus != "draft" && s.PublishStatus != "public" {
		return fmt.Errorf("%w: publish_status must be draft or public, got %q", ErrConfigInvalid, s.PublishStatus)
	}
	if s.PageSize < 1 {
		return fmt.Errorf("%w: page_size must be at least 1", ErrConfigInvalid)
	}

	seen := make(map[string]bool, len(s.Niches))
	for i, n := range s.Niches {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("%w: niche %d has empty name", ErrConfigInvalid, i+1)
		}
		if seen[n.Name] {
			return fmt.Errorf("%w: duplicate niche name %q", ErrConfigInvalid, n.Name)
		}
		seen[n.Name] = true

		if n.ChannelID == "" {
			return fmt.Errorf("%w: niche %q has empty channel_id", ErrConfigInvalid, n.Name)
		}
		if n.SourceLanguage == "" || strings.ContainsAny(n.SourceLanguage, ", ") {
			return fmt.Errorf("%w: niche %q source_language must be a single language code", ErrConfigInvalid, n.Name)
		}
		if len(n.OutputLanguages) == 0 {
			return fmt.Errorf("%w: niche %q has no output_languages", ErrConfigInvalid, n.Name)
		}
		if n.OutputDirectory == "" {
			return fmt.Errorf("%w: niche %q has empty output_directory", ErrConfigInvalid, n.Name)
		}
	}

	if s.ActiveNiche != "all" && !seen[s.ActiveNiche] {
		return fmt.Errorf("%w: %q", ErrUnknownNiche, s.ActiveNiche)
	}

	return nil
}

// SelectNiches resolves the active-niche selector into an ordered list.
// "all" expands to every configured niche in declared order; a name selects
// exactly that niche.
func (s *Settings) SelectNiches(selector string) ([]*NicheConfig, error) {
	if selector == "" {
		selector = s.ActiveNiche
	}

	if selector == "all" {
		niches := make([]*NicheConfig, len(s.Niches))
		for i := range s.Niches {
			niches[i] = &s.Niches[i]
		}
		return niches, nil
	}

	for i := range s.Niches {
		if s.Niches[i].Name == selector {
			return []*NicheConfig{&s.Niches[i]}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNiche, selector)
}

// ensureConfigExists creates the config directory and a default settings file
// if they don't exist.
func ensureConfigExists(settingsPath string) error {
	dir := filepath.Dir(settingsPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		defaultSettings := `active_niche: all
publish_status: draft
page_size: 10
publish_cooldown: 30s
state_file: .tubescribe/processed.json
niches:
  - name: tech
    channel_id: UCXrntkhLN9WRV-kU8XymMYQ
    source_language: en
    output_languages: [en]
    output_directory: articles/tech
agents:
  cleaner:
    model: claude-sonnet-4-20250514
    max_tokens: 4000
    temperature: 0.0
  writer:
    model: claude-sonnet-4-20250514
    max_tokens: 6000
    temperature: 0.3
  titler:
    model: claude-sonnet-4-20250514
    max_tokens: 100
    temperature: 0.5
  tagger:
    model: claude-sonnet-4-20250514
    max_tokens: 200
    temperature: 0.0
images:
  header_count: 1
  inline_count: 2
`
		if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("failed to write default settings: %w", err)
		}
	}

	return nil
}
