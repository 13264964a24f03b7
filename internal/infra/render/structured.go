package render

import (
	"bytes"
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"tldrscope/internal/domain"
)

// JSON renders the report with two-space indentation.
func JSON(report domain.AnalyticsReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAML renders the report using its JSON field names.
func YAML(report domain.AnalyticsReport) ([]byte, error) {
	tree, err := jsonTree(report)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TOML renders the report using its JSON field names. TOML has no null,
// so null values are dropped.
func TOML(report domain.AnalyticsReport) ([]byte, error) {
	tree, err := jsonTree(report)
	if err != nil {
		return nil, err
	}
	return toml.Marshal(pruneNulls(tree))
}

func jsonTree(report domain.AnalyticsReport) (map[string]any, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func pruneNulls(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if item == nil {
				continue
			}
			out[key] = pruneNulls(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, pruneNulls(item))
		}
		return out
	default:
		return value
	}
}
