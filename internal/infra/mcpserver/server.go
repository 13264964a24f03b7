// Package mcpserver exposes the analyzer to MCP clients as two tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/protocol"
	"tldrscope/internal/infra/telemetry"
)

const (
	ToolAnalyze  = "tldr_analyze"
	ToolValidate = "tldr_validate"
)

// Analyzer runs the pipeline against an installed tool.
type Analyzer interface {
	AnalyzeTool(ctx context.Context, tool string, dialect domain.Dialect, topN int) (domain.AnalyticsReport, error)
}

type arguments struct {
	Tool    string `json:"tool"`
	Dialect string `json:"dialect,omitempty"`
	TopN    int    `json:"topN,omitempty"`
}

// Server serves the analyzer tools.
type Server struct {
	server   *mcp.Server
	analyzer Analyzer
	logger   *zap.Logger
}

func New(analyzer Analyzer, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		analyzer: analyzer,
		logger:   logger.Named("mcp"),
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    domain.GeneratedBy,
		Version: version,
	}, &mcp.ServerOptions{HasTools: true})

	analyzeTool := AnalyzeTool()
	s.server.AddTool(&analyzeTool, s.handler(ToolAnalyze, func(report domain.AnalyticsReport) any { return report }))
	validateTool := ValidateTool()
	s.server.AddTool(&validateTool, s.handler(ToolValidate, func(report domain.AnalyticsReport) any { return report.Validation }))
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting (stdio transport)")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func AnalyzeTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolAnalyze,
		Description: "Run `<tool> --tldr` and every declared `<tool> <command> --tldr`, then return the full analytics report as JSON: metadata, normalized commands, validation findings, namespace hierarchy, flag and type distributions, documentation coverage and the command dependency graph.",
		InputSchema: inputSchema(),
	}
}

func ValidateTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolValidate,
		Description: "Check a tool's TLDR protocol output for compliance and return only the validation report as JSON. success is false when any error was found; warnings never fail validation.",
		InputSchema: inputSchema(),
	}
}

func inputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tool": map[string]any{
				"type":        "string",
				"description": "Executable name or path of the tool to inspect.",
			},
			"dialect": map[string]any{
				"type":        "string",
				"description": "Protocol dialect: auto (default), keyvalue or stream.",
				"enum":        []string{"auto", "keyvalue", "stream"},
			},
			"topN": map[string]any{
				"type":        "integer",
				"description": "How many most connected commands to report.",
				"minimum":     1,
			},
		},
		"required": []string{"tool"},
	}
}

func (s *Server) handler(name string, project func(domain.AnalyticsReport) any) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, dialect, err := decodeArguments(req)
		if err != nil {
			return errorResult(err), nil
		}
		report, err := s.analyzer.AnalyzeTool(ctx, args.Tool, dialect, args.TopN)
		if err != nil {
			s.logger.Warn("tool call failed",
				zap.String("mcp_tool", name),
				telemetry.ToolField(args.Tool),
				zap.Error(err),
			)
			return errorResult(err), nil
		}
		raw, err := json.MarshalIndent(project(report), "", "  ")
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		}, nil
	}
}

func decodeArguments(req *mcp.CallToolRequest) (arguments, domain.Dialect, error) {
	var args arguments
	if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return args, "", domain.E(domain.CodeInvalidArgument, "mcpserver.args", "decode arguments", err)
		}
	}
	args.Tool = strings.TrimSpace(args.Tool)
	if args.Tool == "" {
		return args, "", domain.E(domain.CodeInvalidArgument, "mcpserver.args", "tool is required", nil)
	}
	if args.TopN < 0 {
		return args, "", domain.E(domain.CodeInvalidArgument, "mcpserver.args", "topN must be positive", nil)
	}
	if strings.TrimSpace(args.Dialect) == "" {
		return args, "", nil
	}
	dialect, err := protocol.ParseDialect(args.Dialect)
	if err != nil {
		return args, "", err
	}
	return args, dialect, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %s", err.Error())},
		},
	}
}
