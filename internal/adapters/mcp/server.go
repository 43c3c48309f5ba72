package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/usecase"
)

type toolRunner interface {
	Upload(ctx context.Context, name string, body io.Reader) (domain.ActiveDocument, error)
	GenerateQuestions(ctx context.Context) (domain.QuestionSet, error)
	GenerateFlashcards(ctx context.Context) (domain.FlashcardSet, error)
	GenerateSummary(ctx context.Context) (domain.Summary, error)
	GenerateKeywords(ctx context.Context) (usecase.KeywordView, error)
}

// artifactReader returns what an earlier tool call already produced for the
// active document.
type artifactReader interface {
	Questions() (domain.QuestionSet, bool)
	Flashcards() (domain.FlashcardSet, bool)
	Summary() (domain.Summary, bool)
	Keywords() (usecase.KeywordView, bool)
}

type chatter interface {
	OnUserMessage(ctx context.Context, text string) (domain.ChatMessage, error)
}

type sessionReader interface {
	Current() domain.Session
}

type Handlers struct {
	tools     toolRunner
	artifacts artifactReader
	chat      chatter
	sessions  sessionReader
}

func NewHandlers(tools toolRunner, artifacts artifactReader, chat chatter, sessions sessionReader) *Handlers {
	return &Handlers{tools: tools, artifacts: artifacts, chat: chat, sessions: sessions}
}

const regenerateParam = "regenerate"

func regenerateOption() mcp.ToolOption {
	return mcp.WithBoolean(regenerateParam,
		mcp.Description("Ignore the stored result and ask the backend again"),
		mcp.DefaultBool(false),
	)
}

// NewServer exposes the study tools over MCP for the logged-in session.
func NewServer(version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"doc-study",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Upload a document first, then chat with it or generate questions, flashcards, a summary or keywords."),
	)

	s.AddTool(mcp.NewTool("upload",
		mcp.WithDescription("Upload a local document and make it the active document"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to upload")),
	), h.Upload)
	s.AddTool(mcp.NewTool("chat",
		mcp.WithDescription("Ask a question about the active document"),
		mcp.WithString("message", mcp.Required(), mcp.Description("Question to ask")),
	), h.Chat)
	s.AddTool(mcp.NewTool("questions",
		mcp.WithDescription("Generate practice questions for the active document"),
		regenerateOption(),
	), h.Questions)
	s.AddTool(mcp.NewTool("flashcards",
		mcp.WithDescription("Generate flashcards for the active document"),
		regenerateOption(),
	), h.Flashcards)
	s.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Summarize the active document"),
		regenerateOption(),
	), h.Summarize)
	s.AddTool(mcp.NewTool("keywords",
		mcp.WithDescription("Extract categorized keywords from the active document"),
		regenerateOption(),
	), h.Keywords)
	return s
}

func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (h *Handlers) Upload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.requireLogin(); res != nil {
		return res, nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open %s: %v", path, err)), nil
	}
	defer f.Close()

	doc, err := h.tools.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(doc)
}

func (h *Handlers) Chat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.requireLogin(); res != nil {
		return res, nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, err := h.chat.OnUserMessage(ctx, message)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(reply)
}

// Questions and the other artifact tools answer from the stored result when
// one exists; regenerate=true forces a new backend call.
func (h *Handlers) Questions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.requireLogin(); res != nil {
		return res, nil
	}
	questions, ok := h.artifacts.Questions()
	if !ok || req.GetBool(regenerateParam, false) {
		var err error
		if questions, err = h.tools.GenerateQuestions(ctx); err != nil {
			return toolError(err), nil
		}
	}
	return jsonResult(questions)
}

func (h *Handlers) Flashcards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.requireLogin(); res != nil {
		return res, nil
	}
	cards, ok := h.artifacts.Flashcards()
	if !ok || req.GetBool(regenerateParam, false) {
		var err error
		if cards, err = h.tools.GenerateFlashcards(ctx); err != nil {
			return toolError(err), nil
		}
	}
	return jsonResult(cards)
}

func (h *Handlers) Summarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.requireLogin(); res != nil {
		return res, nil
	}
	summary, ok := h.artifacts.Summary()
	if !ok || req.GetBool(regenerateParam, false) {
		var err error
		if summary, err = h.tools.GenerateSummary(ctx); err != nil {
			return toolError(err), nil
		}
	}
	return mcp.NewToolResultText(string(summary)), nil
}

func (h *Handlers) Keywords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.requireLogin(); res != nil {
		return res, nil
	}
	view, ok := h.artifacts.Keywords()
	if !ok || req.GetBool(regenerateParam, false) {
		var err error
		if view, err = h.tools.GenerateKeywords(ctx); err != nil {
			return toolError(err), nil
		}
	}
	return jsonResult(view)
}

func (h *Handlers) requireLogin() *mcp.CallToolResult {
	if h.sessions != nil && h.sessions.Current().Authenticated {
		return nil
	}
	return mcp.NewToolResultError("not logged in: run `studyctl login` first")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func toolError(err error) *mcp.CallToolResult {
	var upstream *domain.UpstreamError
	switch {
	case domain.IsKind(err, domain.ErrNoActiveDocument):
		return mcp.NewToolResultError("no active document: upload one first")
	case domain.IsKind(err, domain.ErrToolBusy):
		return mcp.NewToolResultError("this tool is already running; wait for it to finish")
	case errors.As(err, &upstream):
		return mcp.NewToolResultError(fmt.Sprintf("backend returned status %d: %s", upstream.StatusCode, upstream.Body))
	case domain.IsKind(err, domain.ErrTransport):
		return mcp.NewToolResultError(domain.ErrTransport.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
