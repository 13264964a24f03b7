package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/protocol"
)

// Canonical record fields of the stream dialect.
const (
	FieldName        = "name"
	FieldPurpose     = "purpose"
	FieldInputs      = "inputs"
	FieldOutputs     = "outputs"
	FieldFlags       = "flags"
	FieldSideEffects = "side_effects"
	FieldExamples    = "examples"
	FieldRelated     = "related"
	FieldSchema      = "schema"
)

var recordAliases = map[string]string{
	"name":         FieldName,
	"n":            FieldName,
	"cmd":          FieldName,
	"command":      FieldName,
	"purpose":      FieldPurpose,
	"p":            FieldPurpose,
	"inputs":       FieldInputs,
	"in":           FieldInputs,
	"outputs":      FieldOutputs,
	"out":          FieldOutputs,
	"flags":        FieldFlags,
	"fl":           FieldFlags,
	"side_effects": FieldSideEffects,
	"sideEffects":  FieldSideEffects,
	"effects":      FieldSideEffects,
	"se":           FieldSideEffects,
	"examples":     FieldExamples,
	"ex":           FieldExamples,
	"related":      FieldRelated,
	"rel":          FieldRelated,
	"schema":       FieldSchema,
	"sc":           FieldSchema,
}

var flagAliases = map[string]string{
	"name":        "name",
	"n":           "name",
	"type":        "type",
	"t":           "type",
	"default":     "default",
	"d":           "default",
	"def":         "default",
	"description": "description",
	"desc":        "description",
	"help":        "description",
	"h":           "description",
}

var descriptorAliases = map[string]string{
	"name": "name",
	"n":    "name",
	"type": "type",
	"t":    "type",
}

// NormalizeStream resolves short and long keys of one stream record into a
// CommandRecord. keymap is the preamble's short-to-long key table; it is
// consulted before the built-in aliases. When both a short and a long key
// name the same field, the long key wins. A field of the wrong JSON shape
// is left empty and noted in Issues for the validator.
func NormalizeStream(rec protocol.StreamRecord, keymap map[string]string) domain.CommandRecord {
	fields := resolveAliases(rec.Fields, keymap, recordAliases)
	out := domain.CommandRecord{
		Line:        rec.Line,
		Raw:         rec.Raw,
		Inputs:      []domain.Descriptor{},
		Outputs:     []domain.Descriptor{},
		Flags:       []domain.FlagSpec{},
		SideEffects: []string{},
		Examples:    []string{},
		Related:     []string{},
	}
	note := func(field string, err error) {
		out.Issues = append(out.Issues, fmt.Sprintf("Field '%s' has the wrong shape: %v", field, err))
	}

	if name, err := decodeString(fields[FieldName]); err != nil {
		note(FieldName, err)
	} else {
		out.Name = name
	}
	if purpose, err := decodeString(fields[FieldPurpose]); err != nil {
		note(FieldPurpose, err)
	} else {
		out.Purpose = purpose
	}
	if inputs, err := decodeDescriptors(fields[FieldInputs], keymap); err != nil {
		note(FieldInputs, err)
	} else {
		out.Inputs = inputs
	}
	if outputs, err := decodeDescriptors(fields[FieldOutputs], keymap); err != nil {
		note(FieldOutputs, err)
	} else {
		out.Outputs = outputs
	}
	if flags, err := decodeFlags(fields[FieldFlags], keymap); err != nil {
		note(FieldFlags, err)
	} else {
		out.Flags = flags
	}
	if sideEffects, err := decodeStrings(fields[FieldSideEffects]); err != nil {
		note(FieldSideEffects, err)
	} else {
		out.SideEffects = uniqueStrings(sideEffects)
	}
	if examples, err := decodeStrings(fields[FieldExamples]); err != nil {
		note(FieldExamples, err)
	} else {
		out.Examples = examples
	}
	if related, err := decodeStrings(fields[FieldRelated]); err != nil {
		note(FieldRelated, err)
	} else {
		out.Related = related
	}
	out.Schema = decodeSchema(fields[FieldSchema])
	return out
}

func resolveAliases(fields map[string]json.RawMessage, keymap map[string]string, aliases map[string]string) map[string]json.RawMessage {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	resolved := make(map[string]json.RawMessage, len(fields))
	long := make(map[string]bool, len(fields))
	for _, key := range keys {
		canonical, isLong := canonicalKey(key, keymap, aliases)
		if canonical == "" {
			continue
		}
		if _, taken := resolved[canonical]; taken && long[canonical] && !isLong {
			continue
		}
		resolved[canonical] = fields[key]
		long[canonical] = long[canonical] || isLong
	}
	return resolved
}

// canonicalKey maps key to a canonical field and reports whether key was
// already the canonical (long) spelling.
func canonicalKey(key string, keymap map[string]string, aliases map[string]string) (string, bool) {
	if target, ok := keymap[key]; ok {
		if canonical, ok := aliases[target]; ok {
			return canonical, false
		}
		if canonical, ok := aliases[strings.ToLower(target)]; ok {
			return canonical, false
		}
	}
	canonical, ok := aliases[key]
	if !ok {
		return "", false
	}
	return canonical, canonical == key
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("expected string")
	}
	return strings.TrimSpace(value), nil
}

// decodeStrings accepts a string or an array of strings.
func decodeStrings(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return []string{}, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single == "" {
			return []string{}, nil
		}
		return []string{single}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("expected string or array of strings")
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func decodeDescriptors(raw json.RawMessage, keymap map[string]string) ([]domain.Descriptor, error) {
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Descriptor, 0, len(items))
	for i, item := range items {
		if text, ok := item.(string); ok {
			if text = strings.TrimSpace(text); text != "" {
				out = append(out, domain.Descriptor{Type: text})
			}
			continue
		}
		obj, ok := item.(map[string]json.RawMessage)
		if !ok {
			return nil, fmt.Errorf("item %d: expected string or object", i)
		}
		fields := resolveAliases(obj, keymap, descriptorAliases)
		name, err := decodeString(fields["name"])
		if err != nil {
			return nil, fmt.Errorf("item %d name: %w", i, err)
		}
		typ, err := decodeString(fields["type"])
		if err != nil {
			return nil, fmt.Errorf("item %d type: %w", i, err)
		}
		if typ == "" {
			typ = domain.UnknownType
		}
		out = append(out, domain.Descriptor{Name: name, Type: typ})
	}
	return out, nil
}

func decodeFlags(raw json.RawMessage, keymap map[string]string) ([]domain.FlagSpec, error) {
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FlagSpec, 0, len(items))
	for i, item := range items {
		if text, ok := item.(string); ok {
			name := strings.TrimLeft(strings.TrimSpace(text), "-")
			if name != "" {
				out = append(out, domain.FlagSpec{Name: name, Type: domain.StreamFlagType})
			}
			continue
		}
		obj, ok := item.(map[string]json.RawMessage)
		if !ok {
			return nil, fmt.Errorf("item %d: expected string or object", i)
		}
		fields := resolveAliases(obj, keymap, flagAliases)
		name, err := decodeString(fields["name"])
		if err != nil {
			return nil, fmt.Errorf("item %d name: %w", i, err)
		}
		typ, err := decodeString(fields["type"])
		if err != nil {
			return nil, fmt.Errorf("item %d type: %w", i, err)
		}
		if typ == "" {
			typ = domain.StreamFlagType
		}
		description, err := decodeString(fields["description"])
		if err != nil {
			return nil, fmt.Errorf("item %d description: %w", i, err)
		}
		out = append(out, domain.FlagSpec{
			Name:        strings.TrimLeft(name, "-"),
			Type:        typ,
			Default:     decodeDefault(fields["default"]),
			Description: description,
		})
	}
	return out, nil
}

// decodeItems splits a JSON array into strings and objects. A lone string
// or object is treated as a one-element array.
func decodeItems(raw json.RawMessage) ([]any, error) {
	if isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	var elems []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, err
		}
	case '"', '{':
		elems = []json.RawMessage{trimmed}
	default:
		return nil, fmt.Errorf("expected array, string or object")
	}

	items := make([]any, 0, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		switch {
		case isNull(elem):
			continue
		case elem[0] == '"':
			var text string
			if err := json.Unmarshal(elem, &text); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, text)
		case elem[0] == '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(elem, &obj); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, obj)
		default:
			return nil, fmt.Errorf("item %d: expected string or object", i)
		}
	}
	return items, nil
}

func decodeDefault(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &text
	}
	value := string(bytes.TrimSpace(raw))
	return &value
}

func decodeSchema(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return string(bytes.TrimSpace(raw))
}
