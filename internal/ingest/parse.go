// Package ingest implements the file-discovery, parse, change-detection,
// chunk, embed, upsert, and cleanup stages of spec.md §4.4.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zmem-project/zmem/internal/model"
	"gopkg.in/yaml.v3"
)

// ParsedDocument is the output of the parse stage: a file's frontmatter
// resolved against its body, with a title and type already decided.
type ParsedDocument struct {
	Source      string
	Title       string
	Content     string
	Tags        []string
	Type        model.Type
	Importance  float64
	ContentHash string
}

type frontmatter struct {
	Title      string   `yaml:"title"`
	Tags       []string `yaml:"tags"`
	Type       string   `yaml:"type"`
	Date       string   `yaml:"date"`
	Importance *float64 `yaml:"importance"`
}

var (
	h1Re = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	h2Re = regexp.MustCompile(`(?m)^##[ \t]+(.+)$`)
)

const defaultImportance = 0.5

// ParseFile reads absPath and produces a ParsedDocument keyed by
// relPath (the stable "source" recorded in memory_items).
func ParseFile(absPath, relPath string) (ParsedDocument, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return ParsedDocument{}, err
	}
	hash := sha256.Sum256(raw)

	text := string(raw)
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	fm, body := splitFrontmatter(text)

	title := ""
	if fm != nil {
		title = strings.TrimSpace(fm.Title)
	}
	if title == "" {
		title = firstHeading(body, h1Re, "notes")
	}
	if title == "" {
		title = firstHeading(body, h2Re, "")
	}
	if title == "" {
		base := filepath.Base(relPath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	typ := model.TypeFact
	if fm != nil && fm.Type != "" && model.ValidTypes[model.Type(fm.Type)] {
		typ = model.Type(fm.Type)
	}

	importance := defaultImportance
	var tags []string
	if fm != nil {
		tags = fm.Tags
		if fm.Importance != nil {
			importance = *fm.Importance
		}
	}

	return ParsedDocument{
		Source:      relPath,
		Title:       title,
		Content:     body,
		Tags:        tags,
		Type:        typ,
		Importance:  importance,
		ContentHash: hex.EncodeToString(hash[:]),
	}, nil
}

// splitFrontmatter separates a leading "---" delimited YAML block from
// the markdown body. A malformed or absent block returns the whole
// text as body.
func splitFrontmatter(text string) (*frontmatter, string) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, text
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "---" {
			continue
		}
		var fm frontmatter
		if err := yaml.Unmarshal([]byte(strings.Join(lines[1:i], "\n")), &fm); err != nil {
			return nil, text
		}
		body := strings.Join(lines[i+1:], "\n")
		return &fm, strings.TrimPrefix(body, "\n")
	}
	return nil, text
}

// firstHeading returns the first regex match's captured text, skipping
// one that case-insensitively equals skip (used to pass over a
// generic "Notes" H1).
func firstHeading(body string, re *regexp.Regexp, skip string) string {
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		title := strings.TrimSpace(m[1])
		if skip != "" && strings.EqualFold(title, skip) {
			continue
		}
		return title
	}
	return ""
}
