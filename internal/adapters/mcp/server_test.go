package mcpadapter

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/usecase"
)

type toolsFake struct {
	uploaded     string
	summary      domain.Summary
	summaryCalls int
	stored       *artifactsFake
	err          error
}

func (f *toolsFake) Upload(_ context.Context, name string, body io.Reader) (domain.ActiveDocument, error) {
	raw, _ := io.ReadAll(body)
	f.uploaded = name + ":" + string(raw)
	return domain.ActiveDocument{Identifier: name, StorageLocator: "uploads/" + name}, f.err
}

func (f *toolsFake) GenerateQuestions(context.Context) (domain.QuestionSet, error) {
	return domain.QuestionSet{{Question: "q"}}, f.err
}

func (f *toolsFake) GenerateFlashcards(context.Context) (domain.FlashcardSet, error) {
	return domain.FlashcardSet{{Front: "f"}}, f.err
}

func (f *toolsFake) GenerateSummary(context.Context) (domain.Summary, error) {
	f.summaryCalls++
	if f.stored != nil && f.err == nil {
		f.stored.summary = &f.summary
	}
	return f.summary, f.err
}

func (f *toolsFake) GenerateKeywords(context.Context) (usecase.KeywordView, error) {
	return usecase.NewKeywordView("## A\n- x"), f.err
}

type artifactsFake struct {
	summary *domain.Summary
}

func (a *artifactsFake) Questions() (domain.QuestionSet, bool)   { return nil, false }
func (a *artifactsFake) Flashcards() (domain.FlashcardSet, bool) { return nil, false }
func (a *artifactsFake) Keywords() (usecase.KeywordView, bool)   { return usecase.KeywordView{}, false }

func (a *artifactsFake) Summary() (domain.Summary, bool) {
	if a.summary == nil {
		return "", false
	}
	return *a.summary, true
}

type chatFake struct{}

func (chatFake) OnUserMessage(_ context.Context, text string) (domain.ChatMessage, error) {
	return domain.ChatMessage{Role: domain.RoleAssistant, Content: "echo " + text}, nil
}

type sessionFake struct{ authenticated bool }

func (s sessionFake) Current() domain.Session {
	return domain.Session{Authenticated: s.authenticated}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestToolsRequireLogin(t *testing.T) {
	h := NewHandlers(&toolsFake{}, &artifactsFake{}, chatFake{}, sessionFake{})

	res, err := h.Summarize(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "not logged in") {
		t.Fatalf("expected login error, got %+v", res)
	}
}

func TestUploadReadsLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	tools := &toolsFake{}
	h := NewHandlers(tools, &artifactsFake{}, chatFake{}, sessionFake{authenticated: true})

	res, err := h.Upload(context.Background(), callRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error %s", resultText(t, res))
	}
	if tools.uploaded != "notes.pdf:pdf" {
		t.Fatalf("unexpected upload %q", tools.uploaded)
	}
	if !strings.Contains(resultText(t, res), `"filename": "notes.pdf"`) {
		t.Fatalf("unexpected result %s", resultText(t, res))
	}
}

func TestSummarizeReusesStoredSummary(t *testing.T) {
	artifacts := &artifactsFake{}
	tools := &toolsFake{summary: "short version", stored: artifacts}
	h := NewHandlers(tools, artifacts, chatFake{}, sessionFake{authenticated: true})

	for range 2 {
		res, err := h.Summarize(context.Background(), callRequest(nil))
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if res.IsError || resultText(t, res) != "short version" {
			t.Fatalf("unexpected summary result %+v", res)
		}
	}
	if tools.summaryCalls != 1 {
		t.Fatalf("expected one backend call, got %d", tools.summaryCalls)
	}

	tools.summary = "new version"
	res, _ := h.Summarize(context.Background(), callRequest(map[string]any{"regenerate": true}))
	if resultText(t, res) != "new version" {
		t.Fatalf("expected regenerated summary, got %s", resultText(t, res))
	}
	if tools.summaryCalls != 2 {
		t.Fatalf("expected regenerate to call the backend, got %d calls", tools.summaryCalls)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	h := NewHandlers(&toolsFake{}, &artifactsFake{}, chatFake{}, sessionFake{authenticated: true})

	res, _ := h.Chat(context.Background(), callRequest(map[string]any{}))
	if !res.IsError {
		t.Fatalf("expected missing argument error")
	}

	res, _ = h.Chat(context.Background(), callRequest(map[string]any{"message": "hi"}))
	if res.IsError || !strings.Contains(resultText(t, res), "echo hi") {
		t.Fatalf("unexpected chat result %+v", res)
	}
}

func TestToolErrorsAreReadable(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: domain.WrapError(domain.ErrNoActiveDocument, "summary", errors.New("x")), want: "no active document"},
		{err: domain.WrapError(domain.ErrToolBusy, "summary", errors.New("x")), want: "already running"},
		{err: &domain.UpstreamError{StatusCode: 404, Body: []byte(`{"error":"not found"}`)}, want: "status 404"},
		{err: domain.WrapError(domain.ErrTransport, "summary", errors.New("refused")), want: "service unavailable"},
	}
	for _, tc := range cases {
		h := NewHandlers(&toolsFake{err: tc.err}, &artifactsFake{}, chatFake{}, sessionFake{authenticated: true})
		res, err := h.Summarize(context.Background(), callRequest(nil))
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if !res.IsError || !strings.Contains(resultText(t, res), tc.want) {
			t.Fatalf("expected %q, got %s", tc.want, resultText(t, res))
		}
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer("test", NewHandlers(&toolsFake{}, &artifactsFake{}, chatFake{}, sessionFake{authenticated: true}))
	tools := s.ListTools()
	for _, name := range []string{"upload", "chat", "questions", "flashcards", "summarize", "keywords"} {
		if _, ok := tools[name]; !ok {
			t.Fatalf("expected tool %q to be registered", name)
		}
	}
}
