package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// TypesURI is the resource listing the block palette.
const TypesURI = "lattice://types"

// Server wraps a Builder and exposes it as an MCP Server.
type Server struct {
	builder   *lattice.Builder
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(b *lattice.Builder, opts ...Option) *Server {
	s := &Server{
		builder:   b,
		mcpServer: server.NewMCPServer("lattice-mcp", strings.TrimSpace(lattice.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func pageArg() mcp.ToolOption {
	return mcp.WithString("page_id", mcp.Required(), mcp.Description("ID of the page being edited"))
}

func blockArg() mcp.ToolOption {
	return mcp.WithString("block_id", mcp.Required(), mcp.Description("ID of the block"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("List the block types that can be added to a page, with their category and label."),
	), s.handleListBlockTypes)

	s.mcpServer.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List the blocks of a page in order, including hidden ones."),
		pageArg(),
	), s.handleListBlocks)

	s.mcpServer.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Append a block of the given type with its default content. Returns the new block ID."),
		pageArg(),
		mcp.WithString("type", mcp.Required(), mcp.Description("Block type, see list_block_types")),
	), s.handleAddBlock)

	s.mcpServer.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Shallow-merge a patch into a block. Only the given content/style keys change."),
		pageArg(),
		blockArg(),
		mcp.WithString("patch", mcp.Required(), mcp.Description(`JSON object like {"content": {"title": "Hi"}, "style": {}, "visible": true}`)),
	), s.handleUpdateBlock)

	s.mcpServer.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block. Non-editable blocks are kept."),
		pageArg(),
		blockArg(),
	), s.handleDeleteBlock)

	s.mcpServer.AddTool(mcp.NewTool("reorder_blocks",
		mcp.WithDescription("Move the block at index 'from' to index 'to' (zero-based)."),
		pageArg(),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Current index")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Target index")),
	), s.handleReorder)

	s.mcpServer.AddTool(mcp.NewTool("toggle_visibility",
		mcp.WithDescription("Show or hide a block in the published page."),
		pageArg(),
		blockArg(),
	), s.handleToggle)

	s.mcpServer.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Append a copy of a block. Returns the new block ID."),
		pageArg(),
		blockArg(),
	), s.handleDuplicate)

	s.mcpServer.AddTool(mcp.NewTool("apply_template",
		mcp.WithDescription("Append every block of a catalog template to the page."),
		pageArg(),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template ID, see search_templates")),
	), s.handleApplyTemplate)

	s.mcpServer.AddTool(mcp.NewTool("search_templates",
		mcp.WithDescription("Search the template catalog by text and category."),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against name and description")),
		mcp.WithString("category", mcp.Description(`Category, or "all"`)),
	), s.handleSearchTemplates)

	s.mcpServer.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a page as HTML or as a markdown preview."),
		pageArg(),
		mcp.WithString("mode", mcp.Description(`"view" (default) or "edit"`), mcp.Enum("view", "edit")),
		mcp.WithString("format", mcp.Description(`"markdown" (default) or "html"`), mcp.Enum("markdown", "html")),
	), s.handleRender)

	s.mcpServer.AddTool(mcp.NewTool("export_page",
		mcp.WithDescription("Export the blocks of a page as a JSON array."),
		pageArg(),
	), s.handleExport)

	s.mcpServer.AddTool(mcp.NewTool("import_page",
		mcp.WithDescription("Replace the blocks of a page with a JSON array produced by export_page."),
		pageArg(),
		mcp.WithString("data", mcp.Required(), mcp.Description("JSON array of blocks")),
	), s.handleImport)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TypesURI, "Block types",
		mcp.WithResourceDescription("Palette of block types"),
		mcp.WithMIMEType("application/json"),
	), s.readTypes)
}

func (s *Server) readTypes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.builder.Types())
	if err != nil {
		return nil, fmt.Errorf("failed to encode block types: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TypesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// -- Handlers --

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// okResult reports a mutation outcome; a missing id is not an error.
func okResult(ok bool, extra map[string]any) (*mcp.CallToolResult, error) {
	out := map[string]any{"ok": ok}
	for k, v := range extra {
		out[k] = v
	}
	return jsonResult(out)
}

func (s *Server) toolError(tool string, err error) (*mcp.CallToolResult, error) {
	s.logger.Warn("MCP tool failed", "tool", tool, "err", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err)), nil
}

func (s *Server) handleListBlockTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.builder.Types())
}

func (s *Server) handleListBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blocks, _ := s.builder.LoadConfiguration(ctx, pageID)
	if blocks == nil {
		blocks = []domain.Block{}
	}
	return jsonResult(blocks)
}

func (s *Server) handleAddBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blockType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := s.builder.AddBlock(ctx, pageID, blockType)
	if err != nil {
		return s.toolError("add_block", err)
	}
	return okResult(id != "", map[string]any{"id": id})
}

func (s *Server) handleUpdateBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, blockID, err := pageAndBlock(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := request.RequireString("patch")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var patch domain.Patch
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid patch JSON: %v", err)), nil
	}
	ok, err := s.builder.UpdateBlock(ctx, pageID, blockID, patch)
	if err != nil {
		return s.toolError("update_block", err)
	}
	return okResult(ok, nil)
}

func (s *Server) handleDeleteBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, blockID, err := pageAndBlock(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.builder.DeleteBlock(ctx, pageID, blockID)
	if err != nil {
		return s.toolError("delete_block", err)
	}
	return okResult(ok, nil)
}

func (s *Server) handleReorder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := request.RequireInt("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := request.RequireInt("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.builder.Reorder(ctx, pageID, from, to)
	if err != nil {
		return s.toolError("reorder_blocks", err)
	}
	return okResult(ok, nil)
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, blockID, err := pageAndBlock(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.builder.ToggleVisibility(ctx, pageID, blockID)
	if err != nil {
		return s.toolError("toggle_visibility", err)
	}
	return okResult(ok, nil)
}

func (s *Server) handleDuplicate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, blockID, err := pageAndBlock(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, ok, err := s.builder.Duplicate(ctx, pageID, blockID)
	if err != nil {
		return s.toolError("duplicate_block", err)
	}
	return okResult(ok, map[string]any{"id": id})
}

func (s *Server) handleApplyTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	templateID, err := request.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := s.builder.ApplyTemplate(ctx, pageID, templateID)
	if err != nil {
		return s.toolError("apply_template", err)
	}
	return okResult(len(ids) > 0, map[string]any{"ids": ids})
}

func (s *Server) handleSearchTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.builder.SearchTemplates(
		request.GetString("query", ""),
		request.GetString("category", ""),
	))
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := render.ParseMode(request.GetString("mode", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch format := request.GetString("format", "markdown"); format {
	case "markdown", "":
		md, err := s.builder.Markdown(ctx, pageID, mode)
		if err != nil {
			return s.toolError("render_page", err)
		}
		return mcp.NewToolResultText(md), nil
	case "html":
		var buf bytes.Buffer
		if err := s.builder.Render(ctx, &buf, pageID, mode); err != nil {
			return s.toolError("render_page", err)
		}
		return mcp.NewToolResultText(buf.String()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.builder.Export(ctx, pageID)
	if err != nil {
		return s.toolError("export_page", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := request.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.builder.Import(ctx, pageID, []byte(data)); err != nil {
		return s.toolError("import_page", err)
	}
	return okResult(true, nil)
}

func pageAndBlock(request mcp.CallToolRequest) (string, string, error) {
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return "", "", err
	}
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return "", "", err
	}
	return pageID, blockID, nil
}
