package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/flowdoc/internal/exporter"
	"github.com/rendis/flowdoc/internal/selector"
	"github.com/rendis/flowdoc/internal/store"
	"github.com/rendis/flowdoc/internal/validation"
)

// FlowdocServerDeps holds the dependencies for creating a FlowdocServer.
type FlowdocServerDeps struct {
	Store     store.Store
	Validator validation.Validator
	Selector  *selector.Selector
	Exporter  *exporter.Exporter
	Logger    *slog.Logger
}

// FlowdocServer wraps an MCP server with flowdoc-specific tool handlers.
type FlowdocServer struct {
	store     store.Store
	validator validation.Validator
	selector  *selector.Selector
	exporter  *exporter.Exporter
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewFlowdocServer creates a new FlowdocServer with all 5 tools registered.
func NewFlowdocServer(deps FlowdocServerDeps) *FlowdocServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &FlowdocServer{
		store:     deps.Store,
		validator: deps.Validator,
		selector:  deps.Selector,
		exporter:  deps.Exporter,
		logger:    logger,
	}

	mcpSrv := server.NewMCPServer(
		"flowdoc",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowdoc documents microservice workflows. Use flowdoc.define_flow to store flow definitions, flowdoc.catalog to manage the service catalog, flowdoc.render to produce prompts, documents, diagrams, and matrices, flowdoc.query to search flows with expr/cel/jq selectors, and flowdoc.export to run batch exports."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *FlowdocServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *FlowdocServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the 5 registered MCP tools as ServerTool entries.
func (s *FlowdocServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: renderTool(), Handler: s.handleRender},
		{Tool: defineFlowTool(), Handler: s.handleDefineFlow},
		{Tool: catalogTool(), Handler: s.handleCatalog},
		{Tool: queryTool(), Handler: s.handleQuery},
		{Tool: exportTool(), Handler: s.handleExport},
	}
}

// --- Tool definitions ---

func renderTool() mcp.Tool {
	return mcp.NewTool("flowdoc.render",
		mcp.WithDescription("Render a flow as a diagram-authoring prompt, Markdown document, Mermaid diagram, interaction matrix, raw JSON, or base64 PNG topology image"),
		mcp.WithString("flow_id", mcp.Description("ID of a stored flow to render")),
		mcp.WithObject("flow", mcp.Description("Inline flow definition (used when flow_id is absent)")),
		mcp.WithString("format", mcp.Required(),
			mcp.Enum("prompt", "document", "sequence", "topology", "matrix", "json", "image"),
			mcp.Description("Output format"),
		),
	)
}

func defineFlowTool() mcp.Tool {
	return mcp.NewTool("flowdoc.define_flow",
		mcp.WithDescription("Validate and store a flow definition. Re-defining an existing flow id appends a new revision"),
		mcp.WithObject("flow", mcp.Required(), mcp.Description("Flow definition object")),
	)
}

func catalogTool() mcp.Tool {
	return mcp.NewTool("flowdoc.catalog",
		mcp.WithDescription("Get or replace the service catalog (domains, services, actors, integration types)"),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("get", "set"),
			mcp.Description("get returns the latest catalog revision; set validates and stores a new one"),
		),
		mcp.WithObject("catalog", mcp.Description("Catalog object (required for set)")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("flowdoc.query",
		mcp.WithDescription("Search stored flows. Column filters narrow the candidates; the selector expression (expr by default, cel: or jq: prefixed) decides membership"),
		mcp.WithString("selector", mcp.Description("Boolean expression over flow and catalog (empty matches all)")),
		mcp.WithObject("filter", mcp.Description("Filter criteria (status, priority, domain_id, limit)")),
	)
}

func exportTool() mcp.Tool {
	return mcp.NewTool("flowdoc.export",
		mcp.WithDescription("Run a batch export: render matching flows into an output directory. With job_id, runs a stored job; with cron, creates a scheduled job instead of running now"),
		mcp.WithString("job_id", mcp.Description("ID of a stored export job to run")),
		mcp.WithString("selector", mcp.Description("Boolean expression selecting flows (empty matches all)")),
		mcp.WithString("formats", mcp.Description("Comma-separated formats, e.g. document,sequence")),
		mcp.WithString("output_dir", mcp.Description("Directory to write artifacts into")),
		mcp.WithString("name", mcp.Description("Job name (used with cron)")),
		mcp.WithString("cron", mcp.Description("Cron expression; when set, a job is created instead of running immediately")),
	)
}
