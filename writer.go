package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed prompts/article-template.md
var articleTemplate string

// writeArticleFile serializes the draft to its deterministic location:
// <output_dir>/<videoID>-<lang>.md, a YAML metadata header rendered through
// the article template followed by the body. Returns the written path.
func writeArticleFile(outputDir string, draft *ArticleDraft) (string, error) {
	filename := filepath.Join(outputDir, articleFilename(draft))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	tmpl, err := template.New("article").Parse(articleTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, draft); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing article file: %w", err)
	}
	return filename, nil
}

// articleFilename is deterministic per (video, language) so re-runs
// overwrite rather than accumulate.
func articleFilename(draft *ArticleDraft) string {
	return fmt.Sprintf("%s-%s.md", draft.VideoID, draft.Language)
}
