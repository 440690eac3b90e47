package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

// Embedded stage instructions
//
//go:embed prompts/cleaner-system-prompt.md
var cleanerSystemPrompt string

//go:embed prompts/writer-system-prompt.md
var writerSystemPrompt string

//go:embed prompts/titler-system-prompt.md
var titlerSystemPrompt string

//go:embed prompts/tagger-system-prompt.md
var taggerSystemPrompt string

// promptFunc runs one generation request and returns the response text.
type promptFunc func(agent AgentSettings, systemPrompt, userPrompt string) (string, error)

// Generator drives the four text-generation stages. Every request is a
// standalone prompt carrying only the current item's input, so no
// conversation state leaks between stages or videos.
type Generator struct {
	settings *Settings
	prompt   promptFunc
}

// NewGenerator creates a generator for the given API key.
func NewGenerator(apiKey string, settings *Settings) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key required", ErrConfigInvalid)
	}

	return &Generator{
		settings: settings,
		prompt: func(agent AgentSettings, systemPrompt, userPrompt string) (string, error) {
			requestSettings := types.RequestSettings{
				Model:       agent.Model,
				MaxTokens:   agent.MaxTokens,
				Temperature: agent.Temperature,
			}
			response, err := anthropic.PromptWithSettings(systemPrompt, userPrompt, "", apiKey, requestSettings)
			if err != nil {
				return "", err
			}
			if len(response.Content) == 0 {
				return "", fmt.Errorf("%w: no content in response", ErrGenerationFailed)
			}
			return response.Content[0].Text, nil
		},
	}, nil
}

// Clean rewrites a raw transcript into literary prose, translating when the
// output language differs from the source. The instruction forbids
// timestamps and speaker tags by construction.
func (g *Generator) Clean(transcript, sourceLang, outputLang string) (string, error) {
	systemPrompt := cleanerSystemPrompt
	if outputLang != sourceLang {
		systemPrompt = fmt.Sprintf("%s\n\nTranslate the result from %s into %s. Output only %s text.",
			systemPrompt, sourceLang, outputLang, outputLang)
	}

	text, err := g.prompt(g.settings.Agents.Cleaner, systemPrompt, fmt.Sprintf("Transcript:\n%s", transcript))
	if err != nil {
		return "", fmt.Errorf("cleaner agent failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty cleaner response", ErrGenerationFailed)
	}

	return text, nil
}

// Article expands cleaned text into a structured long-form article bounded
// by the writer's max token budget.
func (g *Generator) Article(cleaned, videoTitle string) (string, error) {
	userPrompt := fmt.Sprintf("Video title: %s\n\nSource text:\n%s", videoTitle, cleaned)

	text, err := g.prompt(g.settings.Agents.Writer, writerSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("writer agent failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty writer response", ErrGenerationFailed)
	}

	return text, nil
}

// Title produces a single engaging headline from the article body.
func (g *Generator) Title(body string) (string, error) {
	text, err := g.prompt(g.settings.Agents.Titler, titlerSystemPrompt, fmt.Sprintf("Article:\n%s", body))
	if err != nil {
		return "", fmt.Errorf("titler agent failed: %w", err)
	}

	title := strings.TrimSpace(text)
	if title == "" {
		return "", fmt.Errorf("%w: empty title response", ErrGenerationFailed)
	}

	// Headlines come back on a single line; keep only the first if not.
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	return strings.Trim(title, `"`), nil
}

// Tags asks for topical tags as a JSON array. The caller normalizes the
// count; this returns whatever the model produced, or the parse failure.
func (g *Generator) Tags(body, title string) ([]string, error) {
	content := body
	if len(content) > 1000 {
		content = content[:1000]
	}
	userPrompt := fmt.Sprintf("Title: %s\n\nContent: %s", title, content)

	text, err := g.prompt(g.settings.Agents.Tagger, taggerSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("tagger agent failed: %w", err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(stripFences(text)), &tags); err != nil {
		// Models occasionally wrap the array in prose; fall back to the
		// default tag set rather than failing the whole article.
		log.Printf("Error parsing tags, using default tags: %v", err)
		return nil, nil
	}
	return tags, nil
}

// stripFences removes markdown code fences from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
