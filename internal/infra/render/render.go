// Package render turns a finished AnalyticsReport into files and console
// output. Renderers only read the report.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tldrscope/internal/domain"
)

const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatTOML     = "toml"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

type encoder func(domain.AnalyticsReport) ([]byte, error)

var encoders = map[string]encoder{
	FormatJSON:     JSON,
	FormatYAML:     YAML,
	FormatTOML:     TOML,
	FormatMarkdown: func(report domain.AnalyticsReport) ([]byte, error) { return []byte(Markdown(report)), nil },
	FormatHTML:     HTML,
}

// FileName returns the output file name for tool in format.
func FileName(tool, format string) string {
	base := sanitize(tool)
	switch format {
	case FormatJSON:
		return base + "_tldr_analytics.json"
	case FormatYAML:
		return base + "_tldr_analytics.yaml"
	case FormatTOML:
		return base + "_tldr_analytics.toml"
	case FormatMarkdown:
		return base + "_tldr_report.md"
	case FormatHTML:
		return base + "_tldr_report.html"
	default:
		return base + "_tldr_analytics." + format
	}
}

// Write renders report once per format into dir and returns the written
// paths in format order.
func Write(dir string, formats []string, report domain.AnalyticsReport) ([]string, error) {
	if dir == "" {
		dir = domain.DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.E(domain.CodeInternal, "render.write", "create output directory", err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		encode, ok := encoders[format]
		if !ok {
			return paths, domain.E(domain.CodeInvalidArgument, "render.write", fmt.Sprintf("unknown format %q", format), nil)
		}
		data, err := encode(report)
		if err != nil {
			return paths, domain.E(domain.CodeInternal, "render.write", fmt.Sprintf("render %s", format), err)
		}
		path := filepath.Join(dir, FileName(report.Metadata.Name, format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, domain.E(domain.CodeInternal, "render.write", fmt.Sprintf("write %s", path), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func sanitize(tool string) string {
	tool = strings.TrimSpace(tool)
	if tool == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, tool)
}
