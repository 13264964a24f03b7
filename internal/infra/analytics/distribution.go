package analytics

import (
	"math"
	"strings"

	"tldrscope/internal/domain"
)

// FlagTypes counts declared flag types. Absent types fall back to the
// dialect's sentinel.
func FlagTypes(records []domain.CommandRecord, dialect domain.Dialect) domain.FlagTypeDistribution {
	fallback := domain.KeyValueFlagType
	if dialect == domain.DialectStream {
		fallback = domain.StreamFlagType
	}

	counter := newCounter()
	for _, rec := range records {
		for _, flag := range rec.Flags {
			typ := strings.TrimSpace(flag.Type)
			if typ == "" {
				typ = fallback
			}
			counter.add(typ)
		}
	}

	dist := domain.FlagTypeDistribution{
		Distribution:   counter.counts,
		Total:          counter.total,
		MostCommonType: counter.mostCommon(),
	}
	if len(records) > 0 {
		dist.AveragePerCommand = round(float64(counter.total)/float64(len(records)), 2)
	}
	return dist
}

// InputTypes counts input descriptor types.
func InputTypes(records []domain.CommandRecord) map[string]int {
	counter := newCounter()
	for _, rec := range records {
		counter.addDescriptors(rec.Inputs)
	}
	return counter.counts
}

// OutputTypes counts output descriptor types.
func OutputTypes(records []domain.CommandRecord) map[string]int {
	counter := newCounter()
	for _, rec := range records {
		counter.addDescriptors(rec.Outputs)
	}
	return counter.counts
}

// SideEffects counts commands per side-effect tag.
func SideEffects(records []domain.CommandRecord) map[string]int {
	counter := newCounter()
	for _, rec := range records {
		for _, effect := range rec.SideEffects {
			counter.add(effect)
		}
	}
	return counter.counts
}

type counter struct {
	counts map[string]int
	order  []string
	total  int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
	c.total++
}

func (c *counter) addDescriptors(descriptors []domain.Descriptor) {
	for _, d := range descriptors {
		typ := strings.TrimSpace(d.Type)
		if typ == "" {
			typ = domain.UnknownType
		}
		c.add(typ)
	}
}

// mostCommon returns the highest count key; ties go to the first seen.
func (c *counter) mostCommon() string {
	best, bestCount := "", 0
	for _, key := range c.order {
		if c.counts[key] > bestCount {
			best, bestCount = key, c.counts[key]
		}
	}
	return best
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
