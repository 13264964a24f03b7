package protocol

import (
	"strings"

	"tldrscope/internal/domain"
)

// Block is one flat `KEY: value` block. Later duplicates of a key
// overwrite earlier ones; Keys keeps first-seen order.
type Block struct {
	Fields map[string]string
	Keys   []string
	Raw    string
}

// Get returns the trimmed value of key, or "".
func (b Block) Get(key string) string {
	return b.Fields[key]
}

// Has reports whether key appeared in the block.
func (b Block) Has(key string) bool {
	_, ok := b.Fields[key]
	return ok
}

// Len returns the number of distinct keys.
func (b Block) Len() int {
	return len(b.Fields)
}

// KeyValueRecord is one command block fetched on its own.
type KeyValueRecord struct {
	Declared string
	Block    Block
}

func (KeyValueRecord) Dialect() domain.Dialect {
	return domain.DialectKeyValue
}

// ParseBlock reads `KEY: value` lines. Lines without a colon, or whose key
// is not an upper-case token, are skipped.
func ParseBlock(text string) Block {
	block := Block{
		Fields: make(map[string]string),
		Raw:    text,
	}
	for _, line := range splitLines(text) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if !isProtocolKey(key) {
			continue
		}
		if _, seen := block.Fields[key]; !seen {
			block.Keys = append(block.Keys, key)
		}
		block.Fields[key] = strings.TrimSpace(value)
	}
	return block
}

// ParseIndex parses the global `<tool> --tldr` block into tool metadata.
// A header with no recognisable fields at all is malformed; missing
// individual fields are left for the validator.
func ParseIndex(text string) (domain.ToolMetadata, error) {
	block := ParseBlock(text)
	if block.Len() == 0 {
		return domain.ToolMetadata{}, domain.AtLine(domain.CodeMalformedProtocol, "protocol.index", 1, firstLine(text), "no KEY: value fields found in header", nil)
	}
	commands := SplitList(block.Get("COMMANDS"), ",")
	return domain.ToolMetadata{
		Name:            block.Get("NAME"),
		Version:         block.Get("VERSION"),
		Summary:         block.Get("SUMMARY"),
		Commands:        commands,
		DeclaredCount:   len(commands),
		Dialect:         domain.DialectKeyValue,
		ProtocolVersion: domain.ProtocolVersionKeyValue,
		Index:           block.Fields,
	}, nil
}

// ParseCommand parses one per-command block.
func ParseCommand(declared, text string) KeyValueRecord {
	return KeyValueRecord{
		Declared: declared,
		Block:    ParseBlock(text),
	}
}

// SplitList splits on sep, trims entries and drops empties.
func SplitList(value, sep string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func isProtocolKey(key string) bool {
	hasLetter := false
	for _, r := range key {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r == '_', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return hasLetter
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}
