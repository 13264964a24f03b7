package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tldrscope/internal/domain"
)

type fakeAnalyzer struct {
	tool    string
	dialect domain.Dialect
	topN    int
	err     error
}

func (f *fakeAnalyzer) AnalyzeTool(_ context.Context, tool string, dialect domain.Dialect, topN int) (domain.AnalyticsReport, error) {
	f.tool, f.dialect, f.topN = tool, dialect, topN
	if f.err != nil {
		return domain.AnalyticsReport{}, f.err
	}
	return domain.AnalyticsReport{
		RunID:    "run-1",
		Metadata: domain.ToolMetadata{Name: tool, Version: "1.0.0"},
		Validation: domain.ValidationReport{
			Success:       true,
			Tool:          tool,
			TotalCommands: 2,
		},
	}, nil
}

func connect(t *testing.T, ctx context.Context, analyzer Analyzer) *mcp.ClientSession {
	t.Helper()
	server := New(analyzer, "test", nil)
	ct, st := mcp.NewInMemoryTransports()
	_, err := server.MCP().Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_ListsTools(t *testing.T) {
	ctx := context.Background()
	session := connect(t, ctx, &fakeAnalyzer{})

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolAnalyze, ToolValidate}, names)
}

func TestServer_AnalyzeReturnsReport(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{}
	session := connect(t, ctx, analyzer)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolAnalyze,
		Arguments: map[string]any{"tool": "forest", "dialect": "stream", "topN": 3},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var report domain.AnalyticsReport
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &report))
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "forest", analyzer.tool)
	assert.Equal(t, domain.DialectStream, analyzer.dialect)
	assert.Equal(t, 3, analyzer.topN)
}

func TestServer_ValidateReturnsValidationOnly(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{}
	session := connect(t, ctx, analyzer)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolValidate,
		Arguments: map[string]any{"tool": "forest"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var validation domain.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &validation))
	assert.True(t, validation.Success)
	assert.Equal(t, 2, validation.TotalCommands)
	assert.Equal(t, domain.Dialect(""), analyzer.dialect)
}

func TestServer_FailuresAreToolErrors(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{err: domain.E(domain.CodeProtocolUnavailable, "process.run", "executable not found", domain.ErrExecutableNotFound)}
	session := connect(t, ctx, analyzer)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolAnalyze,
		Arguments: map[string]any{"tool": "forest"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "executable not found")
}

func TestServer_RejectsBlankTool(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{}
	session := connect(t, ctx, analyzer)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolAnalyze,
		Arguments: map[string]any{"tool": "  "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "tool is required")
	assert.Empty(t, analyzer.tool)
}
