package protocol

import (
	"fmt"
	"regexp"
	"strings"

	"tldrscope/internal/domain"
)

var toolPreamblePattern = regexp.MustCompile(`---\s*tool:\s*(.+?)\s*---`)

// RawRecord is one command record in its dialect's native shape.
type RawRecord interface {
	Dialect() domain.Dialect
}

// Detect picks a dialect from the shape of the first non-blank line.
func Detect(text string) domain.Dialect {
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "---") && toolPreamblePattern.MatchString(trimmed) {
			return domain.DialectStream
		}
		return domain.DialectKeyValue
	}
	return domain.DialectKeyValue
}

// Resolve returns requested unless it asks for auto-detection.
func Resolve(requested domain.Dialect, text string) domain.Dialect {
	switch requested {
	case domain.DialectKeyValue, domain.DialectStream:
		return requested
	default:
		return Detect(text)
	}
}

// ParseDialect maps user-facing dialect names onto a Dialect.
func ParseDialect(raw string) (domain.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return domain.DialectAuto, nil
	case "keyvalue", "kv", "ascii", "a", domain.ProtocolVersionKeyValue:
		return domain.DialectKeyValue, nil
	case "stream", "ndjson", "jsonl", "b", domain.ProtocolVersionStream:
		return domain.DialectStream, nil
	default:
		return "", domain.E(domain.CodeInvalidArgument, "protocol.dialect", fmt.Sprintf("unknown dialect %q (want auto, keyvalue or stream)", raw), nil)
	}
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
