package validator

import (
	"fmt"

	"tldrscope/internal/domain"
)

// Entry is one declared command as seen by the validator. Record is only
// meaningful when Accessible is true.
type Entry struct {
	Declared   string
	Record     domain.CommandRecord
	Accessible bool
}

// Validate runs header and per-command checks. Findings accumulate; an
// inaccessible command is recorded and the rest are still checked.
func Validate(meta domain.ToolMetadata, entries []Entry) domain.ValidationReport {
	report := domain.ValidationReport{
		Tool:           meta.Name,
		Version:        meta.Version,
		Dialect:        meta.Dialect,
		TotalCommands:  len(entries),
		Header:         ValidateHeader(meta),
		Commands:       newResult(),
		CommandResults: make([]domain.CommandValidation, 0, len(entries)),
	}

	if meta.Dialect == domain.DialectStream && meta.DeclaredCount != len(entries) {
		report.Header.Warnings = append(report.Header.Warnings,
			fmt.Sprintf("Declared command count %d does not match %d records", meta.DeclaredCount, len(entries)))
	}

	for i, entry := range entries {
		label := entryLabel(entry, i)
		outcome := domain.CommandValidation{
			Command:    label,
			Accessible: entry.Accessible,
		}
		if entry.Accessible {
			outcome.ValidationResult = ValidateCommand(entry.Record, meta.Dialect)
			report.AccessibleCommands++
		} else {
			outcome.ValidationResult = newResult()
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("Command '%s' is not accessible", label))
		}
		if !outcome.OK() {
			report.FailedCommands++
		}

		for _, msg := range outcome.Errors {
			report.Commands.Errors = append(report.Commands.Errors, fmt.Sprintf("%s: %s", label, msg))
		}
		for _, msg := range outcome.Warnings {
			report.Commands.Warnings = append(report.Commands.Warnings, fmt.Sprintf("%s: %s", label, msg))
		}
		report.CommandResults = append(report.CommandResults, outcome)
	}

	report.TotalErrors = len(report.Header.Errors) + len(report.Commands.Errors)
	report.TotalWarnings = len(report.Header.Warnings) + len(report.Commands.Warnings)
	report.Success = report.TotalErrors == 0
	return report
}

func entryLabel(entry Entry, index int) string {
	if entry.Declared != "" {
		return entry.Declared
	}
	if id := entry.Record.Identity(); id != "" {
		return id
	}
	if entry.Record.Line > 0 {
		return fmt.Sprintf("line %d", entry.Record.Line)
	}
	return fmt.Sprintf("record %d", index+1)
}
