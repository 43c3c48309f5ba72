package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kirillkom/doc-study-gateway/internal/config"
)

func newGatewayStub(t *testing.T) *httptest.Server {
	t.Helper()
	server, _ := newCountingGatewayStub(t)
	return server
}

// newCountingGatewayStub also reports how many summarize calls reached it.
func newCountingGatewayStub(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	summaries := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/upload" {
			_, header, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"No file uploaded"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "success", "filename": header.Filename, "path": "uploads/" + header.Filename})
			return
		}

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/api/cleanup" && body["filename"] != "notes.pdf" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"File not found"}`))
			return
		}
		switch r.URL.Path {
		case "/api/chat":
			_, _ = w.Write([]byte(`{"response":"Chapter two covers channels.","sources":[{"page":3,"text":"channels"}]}`))
		case "/api/questions":
			_, _ = w.Write([]byte(`{"result":[{"question":"What is a goroutine?","answer":"A lightweight thread","type":"short","location":"p. 1"}]}`))
		case "/api/summarize":
			summaries.Add(1)
			_, _ = w.Write([]byte(`{"response":"Go has **goroutines**."}`))
		case "/api/keyword":
			_, _ = w.Write([]byte(`{"response":"## Concepts\n- goroutine\n- channel"}`))
		case "/api/cleanup":
			_, _ = w.Write([]byte(`{"status":"ok","deleted":1}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, summaries
}

func testConfig(t *testing.T, gatewayURL string) config.Config {
	t.Helper()
	return config.Config{
		GatewayURL:      gatewayURL,
		SessionStore:    "file",
		SessionFileDir:  t.TempDir(),
		SessionSlotKey:  "user",
		AuthUsername:    "admin",
		AuthPassword:    "admin",
		AuthDisplayName: "Ahmed Khaled",
	}
}

func run(t *testing.T, cfg config.Config, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg, strings.NewReader(input), &out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoginRejectsWrongPair(t *testing.T) {
	cfg := testConfig(t, newGatewayStub(t).URL)

	if _, err := run(t, cfg, "", "login", "admin", "nope"); err == nil {
		t.Fatalf("expected login failure")
	}
	out, err := run(t, cfg, "", "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "logged out") {
		t.Fatalf("expected logged out status, got %q", out)
	}
}

func TestToolCommandsRequireLogin(t *testing.T) {
	cfg := testConfig(t, newGatewayStub(t).URL)

	_, err := run(t, cfg, "", "questions", "--document", "notes.pdf")
	if !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn, got %v", err)
	}
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	cfg := testConfig(t, newGatewayStub(t).URL)

	out, err := run(t, cfg, "", "login", "admin", "admin")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Logged in as Ahmed Khaled (admin)") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = run(t, cfg, "", "questions", "--document", "notes.pdf")
	if err != nil {
		t.Fatalf("questions error = %v", err)
	}
	if !strings.Contains(out, "1. [short] What is a goroutine?") {
		t.Fatalf("unexpected questions output %q", out)
	}

	out, err = run(t, cfg, "", "keywords", "-d", "notes.pdf")
	if err != nil {
		t.Fatalf("keywords error = %v", err)
	}
	if !strings.Contains(out, "Concepts: goroutine, channel") {
		t.Fatalf("unexpected keywords output %q", out)
	}

	if _, err := run(t, cfg, "", "logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if _, err := run(t, cfg, "", "summarize", "-d", "notes.pdf"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn after logout, got %v", err)
	}
}

func TestToolCommandWithoutDocument(t *testing.T) {
	cfg := testConfig(t, newGatewayStub(t).URL)
	if _, err := run(t, cfg, "", "login", "admin", "admin"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	if _, err := run(t, cfg, "", "flashcards"); err == nil {
		t.Fatalf("expected error without an active document")
	}
}

func TestExportSummaryWritesHTML(t *testing.T) {
	cfg := testConfig(t, newGatewayStub(t).URL)
	if _, err := run(t, cfg, "", "login", "admin", "admin"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "summary.html")
	if _, err := run(t, cfg, "", "export", "summary", "-d", "notes.pdf", "--out", path); err != nil {
		t.Fatalf("export error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	html := string(raw)
	if !strings.Contains(html, "Summary of notes.pdf") || !strings.Contains(html, "<strong>goroutines</strong>") {
		t.Fatalf("unexpected summary html %q", html)
	}
}

func TestExportRejectsUnknownKind(t *testing.T) {
	cfg := testConfig(t, newGatewayStub(t).URL)
	if _, err := run(t, cfg, "", "login", "admin", "admin"); err != nil {
		t.Fatalf("login error = %v", err)
	}
	if _, err := run(t, cfg, "", "export", "mindmap", "-d", "notes.pdf"); err == nil {
		t.Fatalf("expected error for unknown export kind")
	}
}

func TestShellUploadThenChat(t *testing.T) {
	cfg := testConfig(t, newGatewayStub(t).URL)
	if _, err := run(t, cfg, "", "login", "admin", "admin"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	doc := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	input := "/upload " + doc + "\nWhat is in chapter two?\n/transcript\n/quit\n"
	out, err := run(t, cfg, input, "shell")
	if err != nil {
		t.Fatalf("shell error = %v", err)
	}
	for _, want := range []string{
		"Hello! Upload a document to start chatting.",
		"Uploaded notes.pdf (uploads/notes.pdf)",
		"Chapter two covers channels.",
		"[p. 3] channels",
		`assistant: File "notes.pdf" uploaded successfully! Ask me anything about it.`,
		"user: What is in chapter two?",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("shell output missing %q:\n%s", want, out)
		}
	}
}

func TestShellReusesSummaryUntilRegenerate(t *testing.T) {
	server, summaries := newCountingGatewayStub(t)
	cfg := testConfig(t, server.URL)
	if _, err := run(t, cfg, "", "login", "admin", "admin"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	doc := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	input := "/upload " + doc + "\n/summary\n/summary\n/quit\n"
	out, err := run(t, cfg, input, "shell")
	if err != nil {
		t.Fatalf("shell error = %v", err)
	}
	if got := strings.Count(out, "Go has **goroutines**."); got != 2 {
		t.Fatalf("expected summary printed twice, got %d:\n%s", got, out)
	}
	if got := summaries.Load(); got != 1 {
		t.Fatalf("expected one summarize call, got %d", got)
	}

	input = "/upload " + doc + "\n/summary\n/summary regenerate\n/quit\n"
	if _, err := run(t, cfg, input, "shell"); err != nil {
		t.Fatalf("shell error = %v", err)
	}
	if got := summaries.Load(); got != 3 {
		t.Fatalf("expected regenerate to reach the gateway, got %d calls", got)
	}
}
