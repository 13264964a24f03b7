// Package analytics derives aggregates from a normalized command set. Every
// function is pure over its input slice.
package analytics

import "tldrscope/internal/domain"

// Analyze computes all aggregates for records.
func Analyze(records []domain.CommandRecord, dialect domain.Dialect, topN int) domain.Analytics {
	return domain.Analytics{
		TotalCommands:          len(records),
		CommandHierarchy:       Taxonomy(records),
		FlagTypeDistribution:   FlagTypes(records, dialect),
		InputTypeDistribution:  InputTypes(records),
		OutputTypeDistribution: OutputTypes(records),
		SideEffectDistribution: SideEffects(records),
		Coverage:               Coverage(records),
		DependencyGraph:        BuildGraph(records, topN),
	}
}
