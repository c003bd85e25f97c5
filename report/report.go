// Package report renders analysis results for people and for other programs.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts the common spellings of a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// ContentType is the HTTP media type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

// JSON renders res as indented JSON.
func JSON(res *analysis.AnalysisResult) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// YAML renders res as YAML.
func YAML(res *analysis.AnalysisResult) ([]byte, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Render encodes res in format f.
func Render(f Format, res *analysis.AnalysisResult) ([]byte, error) {
	switch f {
	case FormatYAML:
		return YAML(res)
	case FormatMarkdown:
		return []byte(Markdown(res)), nil
	default:
		return JSON(res)
	}
}
