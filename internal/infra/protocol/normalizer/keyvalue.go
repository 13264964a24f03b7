package normalizer

import (
	"strings"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/protocol"
)

// Key/value field names of a per-command block.
const (
	KeyCmd         = "CMD"
	KeyPurpose     = "PURPOSE"
	KeyInputs      = "INPUTS"
	KeyOutputs     = "OUTPUTS"
	KeySideEffects = "SIDE_EFFECTS"
	KeyFlags       = "FLAGS"
	KeyExamples    = "EXAMPLES"
	KeyRelated     = "RELATED"
	KeySchemaJSON  = "SCHEMA_JSON"
)

func NormalizeKeyValue(rec protocol.KeyValueRecord) domain.CommandRecord {
	block := rec.Block
	return domain.CommandRecord{
		Name:        block.Get(KeyCmd),
		Declared:    rec.Declared,
		Purpose:     block.Get(KeyPurpose),
		Inputs:      ParseDescriptors(block.Get(KeyInputs)),
		Outputs:     ParseDescriptors(block.Get(KeyOutputs)),
		Flags:       ParseFlags(block.Get(KeyFlags)),
		SideEffects: ParseSideEffects(block.Get(KeySideEffects)),
		Examples:    ParseExamples(block.Get(KeyExamples)),
		Related:     ParseRelated(block.Get(KeyRelated)),
		Schema:      block.Get(KeySchemaJSON),
		Raw:         block.Raw,
	}
}

// ParseFlags decodes `sig | description; sig | description`. A signature
// is `--name=TYPE=default`; TYPE defaults to BOOL and default is only set
// when a third segment exists. Entries without `|` or without the `--`
// prefix are dropped.
func ParseFlags(value string) []domain.FlagSpec {
	flags := []domain.FlagSpec{}
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		signature, description, ok := strings.Cut(entry, "|")
		if !ok {
			continue
		}
		flag, ok := parseSignature(strings.TrimSpace(signature))
		if !ok {
			continue
		}
		flag.Description = strings.TrimSpace(description)
		flags = append(flags, flag)
	}
	return flags
}

func parseSignature(signature string) (domain.FlagSpec, bool) {
	rest, ok := strings.CutPrefix(signature, "--")
	if !ok {
		return domain.FlagSpec{}, false
	}
	parts := strings.SplitN(rest, "=", 3)
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return domain.FlagSpec{}, false
	}
	flag := domain.FlagSpec{
		Name: name,
		Type: domain.KeyValueFlagType,
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		flag.Type = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		def := parts[2]
		flag.Default = &def
	}
	return flag, true
}

// ParseExamples splits pipe-separated examples.
func ParseExamples(value string) []string {
	return nonNil(protocol.SplitList(value, "|"))
}

// ParseRelated splits comma-separated command references.
func ParseRelated(value string) []string {
	return nonNil(protocol.SplitList(value, ","))
}

// ParseSideEffects splits comma-separated effect tags, keeping the first
// occurrence of each.
func ParseSideEffects(value string) []string {
	return uniqueStrings(protocol.SplitList(value, ","))
}

// ParseDescriptors splits comma-separated inputs or outputs. `name:type`
// carries both; a bare entry is a type.
func ParseDescriptors(value string) []domain.Descriptor {
	entries := protocol.SplitList(value, ",")
	descriptors := make([]domain.Descriptor, 0, len(entries))
	for _, entry := range entries {
		name, typ, ok := strings.Cut(entry, ":")
		if !ok {
			descriptors = append(descriptors, domain.Descriptor{Type: entry})
			continue
		}
		typ = strings.TrimSpace(typ)
		if typ == "" {
			typ = domain.UnknownType
		}
		descriptors = append(descriptors, domain.Descriptor{Name: strings.TrimSpace(name), Type: typ})
	}
	return descriptors
}

func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
