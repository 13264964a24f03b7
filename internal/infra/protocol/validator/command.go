package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"tldrscope/internal/domain"
)

var knownFlagTypes = map[string]struct{}{
	"BOOL":     {},
	"BOOLEAN":  {},
	"STRING":   {},
	"STR":      {},
	"INT":      {},
	"INTEGER":  {},
	"FLOAT":    {},
	"NUMBER":   {},
	"PATH":     {},
	"FILE":     {},
	"DIR":      {},
	"ENUM":     {},
	"LIST":     {},
	"ARRAY":    {},
	"JSON":     {},
	"DURATION": {},
	"URL":      {},
}

// ValidateCommand checks one normalized record. Purpose is required in the
// key/value dialect and only recommended in the stream dialect.
func ValidateCommand(rec domain.CommandRecord, dialect domain.Dialect) domain.ValidationResult {
	result := newResult()

	nameField, purposeField := "name", "purpose"
	if dialect != domain.DialectStream {
		nameField, purposeField = "CMD", "PURPOSE"
	}

	result.Errors = append(result.Errors, rec.Issues...)

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		result.Errors = append(result.Errors, missingField(nameField))
	}
	if strings.TrimSpace(rec.Purpose) == "" {
		if dialect == domain.DialectStream {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Missing recommended field: %s", purposeField))
		} else {
			result.Errors = append(result.Errors, missingField(purposeField))
		}
	}

	if dialect != domain.DialectStream && name != "" && rec.Declared != "" && name != rec.Declared {
		result.Warnings = append(result.Warnings, fmt.Sprintf("CMD field mismatch: expected '%s', got '%s'", rec.Declared, name))
	}

	for _, flag := range rec.Flags {
		if flag.Type == domain.UnknownType {
			continue
		}
		if _, ok := knownFlagTypes[strings.ToUpper(flag.Type)]; !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Flag '%s' has unrecognised type '%s'", flag.Name, flag.Type))
		}
	}

	if schema := strings.TrimSpace(rec.Schema); schema != "" {
		if err := checkSchema(schema); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Schema is not a valid JSON Schema: %v", err))
		}
	}
	return result
}

func checkSchema(raw string) error {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return err
	}
	_, err := schema.Resolve(nil)
	return err
}
