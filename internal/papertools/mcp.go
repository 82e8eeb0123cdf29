// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package papertools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes the toolkit as an MCP server.
func NewMCPServer(t *Toolkit, version string) *server.MCPServer {
	s := server.NewMCPServer("paper-digest", version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool(ToolSearchArxiv,
		mcp.WithDescription(searchSpec.Description),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search keywords or phrases")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results"), mcp.DefaultNumber(defaultSearchLimit)),
	), t.handleSearch)

	s.AddTool(mcp.NewTool(ToolPaperContent,
		mcp.WithDescription(contentSpec.Description),
		mcp.WithString("paper_id", mcp.Required(), mcp.Description("arXiv paper id")),
		mcp.WithString("pages", mcp.Description(`1-based pages such as "2", "1-3" or "1,4-5"`)),
	), t.handleContent)

	s.AddTool(mcp.NewTool(ToolPageCount,
		mcp.WithDescription(pageCountSpec.Description),
		mcp.WithString("paper_id", mcp.Required(), mcp.Description("arXiv paper id")),
	), t.handlePageCount)

	return s
}

// ServeStdio runs the MCP server on stdin and stdout until EOF.
func ServeStdio(t *Toolkit, version string) error {
	return server.ServeStdio(NewMCPServer(t, version))
}

func (t *Toolkit) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := t.SearchArxiv(ctx, query, int(req.GetFloat("limit", defaultSearchLimit)))
	return result(out, err), nil
}

func (t *Toolkit) handleContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("paper_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := t.PaperContent(ctx, id, req.GetString("pages", ""))
	return result(out, err), nil
}

func (t *Toolkit) handlePageCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("paper_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := t.PageCount(ctx, id)
	return result(out, err), nil
}

func result(text string, err error) *mcp.CallToolResult {
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(text)
}
