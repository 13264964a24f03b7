package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"tldrscope/internal/domain"
)

func TestParseBlock_SkipsNonConformingLines(t *testing.T) {
	block := ParseBlock(`NAME: forest
this line is prose without a separator
Note: mixed case keys are ignored
SIDE_EFFECTS: writes state
SCHEMA_JSON: {"type":"object"}
  PURPOSE  :   trimmed value
http://example.com: not a key
`)

	want := map[string]string{
		"NAME":         "forest",
		"SIDE_EFFECTS": "writes state",
		"SCHEMA_JSON":  `{"type":"object"}`,
		"PURPOSE":      "trimmed value",
	}
	if diff := cmp.Diff(want, block.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"NAME", "SIDE_EFFECTS", "SCHEMA_JSON", "PURPOSE"}, block.Keys)
}

func TestParseBlock_ValueKeepsLaterColons(t *testing.T) {
	block := ParseBlock("EXAMPLES: forest node read --id=a:b | forest init\r\n")
	require.Equal(t, "forest node read --id=a:b | forest init", block.Get("EXAMPLES"))
}

func TestParseBlock_LaterDuplicateWins(t *testing.T) {
	block := ParseBlock("CMD: first\nCMD: second\n")
	require.Equal(t, "second", block.Get("CMD"))
	require.Equal(t, []string{"CMD"}, block.Keys)
	require.Equal(t, 1, block.Len())
}

func TestParseIndex(t *testing.T) {
	meta, err := ParseIndex(`NAME: forest
VERSION: 1.0
SUMMARY: demo
COMMANDS: init, node.read, ,
`)
	require.NoError(t, err)
	require.Equal(t, "forest", meta.Name)
	require.Equal(t, "1.0", meta.Version)
	require.Equal(t, "demo", meta.Summary)
	require.Equal(t, []string{"init", "node.read"}, meta.Commands)
	require.Equal(t, 2, meta.DeclaredCount)
	require.Equal(t, domain.DialectKeyValue, meta.Dialect)
	require.Equal(t, domain.ProtocolVersionKeyValue, meta.ProtocolVersion)
	require.Equal(t, "init, node.read, ,", meta.Index["COMMANDS"])
}

func TestParseIndex_NoFieldsIsMalformed(t *testing.T) {
	_, err := ParseIndex("usage: forest [command]\nsee the manual\n")
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeMalformedProtocol, code)
}

func TestParseCommand(t *testing.T) {
	rec := ParseCommand("node.read", "CMD: node.read\nPURPOSE: Read a node\n")
	require.Equal(t, "node.read", rec.Declared)
	require.Equal(t, "Read a node", rec.Block.Get("PURPOSE"))
	require.Equal(t, domain.DialectKeyValue, rec.Dialect())
}

func TestSplitList(t *testing.T) {
	require.Nil(t, SplitList("   ", ","))
	require.Equal(t, []string{"a", "b"}, SplitList(" a ,, b ,", ","))
}
