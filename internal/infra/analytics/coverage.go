package analytics

import (
	"strings"

	"tldrscope/internal/domain"
)

// Coverage reports how many commands populate each documentation field.
func Coverage(records []domain.CommandRecord) domain.Coverage {
	var purpose, examples, inputs, outputs, flags, sideEffects, related, schema int
	for _, rec := range records {
		if strings.TrimSpace(rec.Purpose) != "" {
			purpose++
		}
		if len(rec.Examples) > 0 {
			examples++
		}
		if len(rec.Inputs) > 0 {
			inputs++
		}
		if len(rec.Outputs) > 0 {
			outputs++
		}
		if len(rec.Flags) > 0 {
			flags++
		}
		if len(rec.SideEffects) > 0 {
			sideEffects++
		}
		if len(rec.Related) > 0 {
			related++
		}
		if strings.TrimSpace(rec.Schema) != "" {
			schema++
		}
	}

	total := len(records)
	return domain.Coverage{
		Total:       total,
		Purpose:     metric(purpose, total),
		Examples:    metric(examples, total),
		Inputs:      metric(inputs, total),
		Outputs:     metric(outputs, total),
		Flags:       metric(flags, total),
		SideEffects: metric(sideEffects, total),
		Related:     metric(related, total),
		Schema:      metric(schema, total),
	}
}

// Percent is 100*count/total rounded to one decimal, or 0 with no total.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round(100*float64(count)/float64(total), 1)
}

func metric(count, total int) domain.CoverageMetric {
	return domain.CoverageMetric{Count: count, Percent: Percent(count, total)}
}
