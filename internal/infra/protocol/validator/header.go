package validator

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"tldrscope/internal/domain"
)

var keyValueHeaderFields = []string{"NAME", "VERSION", "SUMMARY", "COMMANDS"}

// ValidateHeader checks the tool header against the required fields of
// its dialect. The key/value dialect requires NAME, VERSION, SUMMARY and
// COMMANDS; the stream dialect requires name and version.
func ValidateHeader(meta domain.ToolMetadata) domain.ValidationResult {
	result := newResult()

	switch meta.Dialect {
	case domain.DialectStream:
		if strings.TrimSpace(meta.Name) == "" {
			result.Errors = append(result.Errors, missingField("name"))
		}
		if strings.TrimSpace(meta.Version) == "" {
			result.Errors = append(result.Errors, missingField("version"))
		}
	default:
		for _, key := range keyValueHeaderFields {
			if strings.TrimSpace(meta.Index[key]) == "" {
				result.Errors = append(result.Errors, missingField(key))
			}
		}
	}

	if version := strings.TrimSpace(meta.Version); version != "" && !isSemver(version) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Version '%s' is not a semantic version", version))
	}
	return result
}

func isSemver(raw string) bool {
	if !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	return semver.IsValid(raw)
}

func missingField(name string) string {
	return fmt.Sprintf("Missing required field: %s", name)
}

func newResult() domain.ValidationResult {
	return domain.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}
}
