package domain

import "time"

// FetchStatus labels the outcome of one protocol fetch.
type FetchStatus string

const (
	// FetchStatusSuccess indicates the tool produced protocol text.
	FetchStatusSuccess FetchStatus = "success"
	// FetchStatusUnavailable indicates the command could not be reached.
	FetchStatusUnavailable FetchStatus = "unavailable"
	// FetchStatusError indicates the fetch failed fatally.
	FetchStatusError FetchStatus = "error"
)

// FetchScope distinguishes the header fetch from per-command fetches.
type FetchScope string

const (
	// FetchScopeIndex is the `<tool> --tldr` fetch.
	FetchScopeIndex FetchScope = "index"
	// FetchScopeCommand is a `<tool> <words> --tldr` fetch.
	FetchScopeCommand FetchScope = "command"
)

// FetchMetric captures one call to a protocol source.
type FetchMetric struct {
	Scope    FetchScope
	Status   FetchStatus
	Duration time.Duration
}

// Severity labels validation findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Metrics records operational metrics for pipeline runs.
type Metrics interface {
	ObserveFetch(metric FetchMetric)
	ObserveRun(dialect Dialect, duration time.Duration, err error)
	SetCommands(tool string, total int, accessible int)
	ObserveFindings(severity Severity, count int)
}
