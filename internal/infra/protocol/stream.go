package protocol

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"tldrscope/internal/domain"
)

const metaPrefix = "# meta:"

var (
	versionTokenPattern  = regexp.MustCompile(`(?:^|[\s,])version\s*=\s*([^,\s]+)`)
	commandsTokenPattern = regexp.MustCompile(`(?:^|[\s,])commands\s*=\s*(\d+)`)
	keymapTokenPattern   = regexp.MustCompile(`(?:^|[\s,])keymap\s*=\s*`)
)

// StreamRecord is one JSON object line of a stream document.
type StreamRecord struct {
	Line   int
	Fields map[string]json.RawMessage
	Raw    string
}

func (StreamRecord) Dialect() domain.Dialect {
	return domain.DialectStream
}

// StreamDocument is a parsed stream blob.
type StreamDocument struct {
	Metadata domain.ToolMetadata
	Records  []StreamRecord
}

// ParseStream parses a stream blob: after any leading blank lines, a
// `--- tool: <name> ---` line, a
// `# meta:` line carrying version and keymap, then one JSON object per
// non-blank line. The preamble is checked in full before any record is read.
func ParseStream(text string) (StreamDocument, error) {
	lines := splitLines(strings.TrimRight(text, "\r\n"))
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if len(lines)-start < 2 {
		return StreamDocument{}, domain.AtLine(domain.CodeMalformedProtocol, "protocol.stream", len(lines)+1, "", "stream has fewer than 2 lines; missing '# meta:' preamble", nil)
	}

	name, err := parseToolLine(lines[start], start+1)
	if err != nil {
		return StreamDocument{}, err
	}
	meta, err := parseMetaLine(lines[start+1], start+2)
	if err != nil {
		return StreamDocument{}, err
	}
	meta.Name = name

	records := make([]StreamRecord, 0, len(lines)-start-2)
	for i := start + 2; i < len(lines); i++ {
		raw := lines[i]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return StreamDocument{}, domain.AtLine(domain.CodeMalformedRecord, "protocol.stream", i+1, raw, "invalid JSON record", err)
		}
		if fields == nil {
			return StreamDocument{}, domain.AtLine(domain.CodeMalformedRecord, "protocol.stream", i+1, raw, "record is not a JSON object", nil)
		}
		records = append(records, StreamRecord{Line: i + 1, Fields: fields, Raw: raw})
	}

	if meta.DeclaredCount == 0 {
		meta.DeclaredCount = len(records)
	}
	return StreamDocument{Metadata: meta, Records: records}, nil
}

func parseToolLine(line string, lineNo int) (string, error) {
	match := toolPreamblePattern.FindStringSubmatch(line)
	if match == nil {
		return "", domain.AtLine(domain.CodeMalformedProtocol, "protocol.stream", lineNo, line, "expected '--- tool: <name> ---'", nil)
	}
	name := strings.TrimSpace(match[1])
	if name == "" {
		return "", domain.AtLine(domain.CodeMalformedProtocol, "protocol.stream", lineNo, line, "tool name is empty", nil)
	}
	return name, nil
}

func parseMetaLine(line string, lineNo int) (domain.ToolMetadata, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, metaPrefix) {
		return domain.ToolMetadata{}, domain.AtLine(domain.CodeMalformedProtocol, "protocol.stream", lineNo, line, "expected '# meta:' preamble", nil)
	}
	body := strings.TrimSpace(strings.TrimPrefix(trimmed, metaPrefix))

	keymapRaw, rest, ok := extractKeymap(body)
	if !ok {
		return domain.ToolMetadata{}, domain.AtLine(domain.CodeMalformedProtocol, "protocol.stream", lineNo, line, "missing keymap=<json-object> token", nil)
	}
	keymap := make(map[string]string)
	if err := json.Unmarshal(jsonc.ToJSON([]byte(keymapRaw)), &keymap); err != nil {
		return domain.ToolMetadata{}, domain.AtLine(domain.CodeMalformedProtocol, "protocol.stream", lineNo, line, "keymap is not a JSON object of strings", err)
	}

	version := versionTokenPattern.FindStringSubmatch(rest)
	if version == nil || strings.TrimSpace(version[1]) == "" {
		return domain.ToolMetadata{}, domain.AtLine(domain.CodeMalformedProtocol, "protocol.stream", lineNo, line, "missing version=<value> token", nil)
	}

	meta := domain.ToolMetadata{
		Version:         strings.Trim(version[1], `"'`),
		Dialect:         domain.DialectStream,
		ProtocolVersion: domain.ProtocolVersionStream,
		Keymap:          keymap,
	}
	if count := commandsTokenPattern.FindStringSubmatch(rest); count != nil {
		if n, err := strconv.Atoi(count[1]); err == nil {
			meta.DeclaredCount = n
		}
	}
	return meta, nil
}

// extractKeymap finds `keymap=` and returns the balanced JSON object that
// follows it, plus the meta body with that object cut out.
func extractKeymap(body string) (string, string, bool) {
	loc := keymapTokenPattern.FindStringIndex(body)
	if loc == nil {
		return "", body, false
	}
	start := loc[1]
	if start >= len(body) || body[start] != '{' {
		return "", body, false
	}
	end, ok := matchBrace(body, start)
	if !ok {
		return "", body, false
	}
	rest := body[:loc[0]] + " " + body[end+1:]
	return body[start : end+1], rest, true
}

func matchBrace(s string, open int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
