package domain

import (
	"strings"
	"time"
)

// Dialect names the wire encoding of the protocol text.
type Dialect string

const (
	// DialectAuto asks the parser to pick a dialect from the first line.
	DialectAuto Dialect = "auto"
	// DialectKeyValue is the line-oriented `KEY: value` dialect.
	DialectKeyValue Dialect = "keyvalue"
	// DialectStream is the newline-delimited JSON dialect with a preamble.
	DialectStream Dialect = "stream"
)

// ProtocolVersion returns the protocol revision a dialect belongs to.
func (d Dialect) ProtocolVersion() string {
	switch d {
	case DialectKeyValue:
		return ProtocolVersionKeyValue
	case DialectStream:
		return ProtocolVersionStream
	default:
		return ""
	}
}

// ToolMetadata identifies the described tool.
type ToolMetadata struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Summary         string            `json:"summary,omitempty"`
	Commands        []string          `json:"commands,omitempty"`
	DeclaredCount   int               `json:"declaredCount"`
	Dialect         Dialect           `json:"dialect"`
	ProtocolVersion string            `json:"protocolVersion"`
	Index           map[string]string `json:"index,omitempty"`
	Keymap          map[string]string `json:"keymap,omitempty"`
}

// Descriptor is one typed input or output of a command.
type Descriptor struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// FlagSpec describes one flag of a command.
type FlagSpec struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Default     *string `json:"default"`
	Description string  `json:"description"`
}

// CommandRecord is the dialect-agnostic description of one command.
type CommandRecord struct {
	Name        string       `json:"name"`
	Declared    string       `json:"declared,omitempty"`
	Purpose     string       `json:"purpose"`
	Inputs      []Descriptor `json:"inputs"`
	Outputs     []Descriptor `json:"outputs"`
	Flags       []FlagSpec   `json:"flags"`
	SideEffects []string     `json:"sideEffects"`
	Examples    []string     `json:"examples"`
	Related     []string     `json:"related"`
	Schema      string       `json:"schema,omitempty"`
	Line        int          `json:"line,omitempty"`
	Raw         string       `json:"raw"`
	// Issues are decode problems found while normalizing; each one is a
	// validation error.
	Issues []string `json:"issues,omitempty"`
}

// Identity is the name analytics key the record by. A name declared by
// the header wins over the record's own CMD, which only feeds the
// mismatch warning; stream records carry no declared name.
func (r CommandRecord) Identity() string {
	if declared := strings.TrimSpace(r.Declared); declared != "" {
		return declared
	}
	return strings.TrimSpace(r.Name)
}

// ValidationResult holds findings for one subject. Errors break
// compliance, warnings do not.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the result carries no errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Merge appends other's findings to r.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// CommandValidation is the validation outcome of one declared command.
type CommandValidation struct {
	Command    string `json:"command"`
	Accessible bool   `json:"accessible"`
	ValidationResult
}

// ValidationReport aggregates header and per-command validation.
type ValidationReport struct {
	Success            bool                `json:"success"`
	Tool               string              `json:"cli"`
	Version            string              `json:"version"`
	Dialect            Dialect             `json:"dialect"`
	TotalCommands      int                 `json:"totalCommands"`
	AccessibleCommands int                 `json:"accessibleCommands"`
	FailedCommands     int                 `json:"failedCommands"`
	Header             ValidationResult    `json:"header"`
	Commands           ValidationResult    `json:"commands"`
	CommandResults     []CommandValidation `json:"commandResults"`
	TotalErrors        int                 `json:"totalErrors"`
	TotalWarnings      int                 `json:"totalWarnings"`
}

// DependencyGraph is the directed reference graph built from related lists.
type DependencyGraph struct {
	Outgoing      map[string][]string `json:"outgoing"`
	Incoming      map[string][]string `json:"incoming"`
	Centrality    map[string]int      `json:"centrality"`
	Ranking       []ConnectedCommand  `json:"ranking"`
	MostConnected []ConnectedCommand  `json:"mostConnected"`
}

// ConnectedCommand is one ranked graph node.
type ConnectedCommand struct {
	Command    string `json:"command"`
	Centrality int    `json:"centrality"`
	Outgoing   int    `json:"outgoing"`
	Incoming   int    `json:"incoming"`
}

// FlagTypeDistribution counts declared flag types.
type FlagTypeDistribution struct {
	Distribution      map[string]int `json:"distribution"`
	Total             int            `json:"total"`
	AveragePerCommand float64        `json:"averagePerCommand"`
	MostCommonType    string         `json:"mostCommonType,omitempty"`
}

// CoverageMetric is the share of commands carrying one documentation field.
type CoverageMetric struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Coverage reports documentation completeness per field.
type Coverage struct {
	Total       int            `json:"total"`
	Purpose     CoverageMetric `json:"purpose"`
	Examples    CoverageMetric `json:"examples"`
	Inputs      CoverageMetric `json:"inputs"`
	Outputs     CoverageMetric `json:"outputs"`
	Flags       CoverageMetric `json:"flags"`
	SideEffects CoverageMetric `json:"sideEffects"`
	Related     CoverageMetric `json:"related"`
	Schema      CoverageMetric `json:"schema"`
}

// Analytics holds every derived aggregate of a command set.
type Analytics struct {
	TotalCommands          int                  `json:"totalCommands"`
	CommandHierarchy       map[string][]string  `json:"commandHierarchy"`
	FlagTypeDistribution   FlagTypeDistribution `json:"flagTypeDistribution"`
	InputTypeDistribution  map[string]int       `json:"inputTypeDistribution"`
	OutputTypeDistribution map[string]int       `json:"outputTypeDistribution"`
	SideEffectDistribution map[string]int       `json:"sideEffectDistribution"`
	Coverage               Coverage             `json:"coverage"`
	DependencyGraph        DependencyGraph      `json:"dependencyGraph"`
}

// AnalyticsReport is the terminal artifact of one run. It is assembled
// once and handed to writers read-only.
type AnalyticsReport struct {
	RunID        string           `json:"runId"`
	GeneratedAt  time.Time        `json:"generatedAt"`
	GeneratedBy  string           `json:"generatedBy"`
	Fingerprint  string           `json:"fingerprint"`
	Metadata     ToolMetadata     `json:"metadata"`
	Commands     []CommandRecord  `json:"commands"`
	Inaccessible []string         `json:"inaccessible"`
	Validation   ValidationReport `json:"validation"`
	Analytics    Analytics        `json:"analytics"`
}
