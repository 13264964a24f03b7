package analytics

import (
	"strings"

	"tldrscope/internal/domain"
)

// Taxonomy buckets command names by the segment before their first dot.
// Undotted names land in the top-level bucket, which is always present.
func Taxonomy(records []domain.CommandRecord) map[string][]string {
	hierarchy := map[string][]string{
		domain.TopLevelNamespace: {},
	}
	for _, rec := range records {
		name := rec.Identity()
		if name == "" {
			continue
		}
		namespace := Namespace(name)
		hierarchy[namespace] = append(hierarchy[namespace], name)
	}
	return hierarchy
}

// Namespace returns the namespace a command name belongs to.
func Namespace(name string) string {
	namespace, _, dotted := strings.Cut(name, ".")
	if !dotted || namespace == "" {
		return domain.TopLevelNamespace
	}
	return namespace
}
