package gatewayclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/resilience"
)

// Client talks to the gateway's HTTP surface on behalf of the client tools.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		executor:   executor,
	}
}

type uploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

func (c *Client) Upload(ctx context.Context, name string, body io.Reader) (*domain.ActiveDocument, error) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var response uploadResponse
	err = c.do(ctx, "upload", "/api/upload", writer.FormDataContentType(), form.Bytes(), &response)
	if err != nil {
		return nil, err
	}
	if response.Filename == "" {
		return nil, domain.WrapError(domain.ErrUpstream, "upload", errors.New("response has no filename"))
	}
	return &domain.ActiveDocument{Identifier: response.Filename, StorageLocator: response.Path}, nil
}

func (c *Client) Cleanup(ctx context.Context) error {
	return c.postJSON(ctx, "cleanup", "/api/cleanup", map[string]any{}, nil)
}

func (c *Client) Chat(ctx context.Context, filename, message string) (*domain.ChatReply, error) {
	var reply domain.ChatReply
	payload := map[string]string{"filename": filename, "message": message}
	if err := c.postJSON(ctx, "chat", "/api/chat", payload, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Questions(ctx context.Context, filename string) (domain.QuestionSet, error) {
	var response struct {
		Result domain.QuestionSet `json:"result"`
	}
	if err := c.postJSON(ctx, "questions", "/api/questions", filenameBody(filename), &response); err != nil {
		return nil, err
	}
	if response.Result == nil {
		response.Result = domain.QuestionSet{}
	}
	return response.Result, nil
}

func (c *Client) Flashcards(ctx context.Context, filename string) (domain.FlashcardSet, error) {
	var response struct {
		Result domain.FlashcardSet `json:"result"`
	}
	if err := c.postJSON(ctx, "flashcards", "/api/flashcards", filenameBody(filename), &response); err != nil {
		return nil, err
	}
	if response.Result == nil {
		response.Result = domain.FlashcardSet{}
	}
	return response.Result, nil
}

func (c *Client) Summarize(ctx context.Context, filename string) (domain.Summary, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "summarize", "/api/summarize", filenameBody(filename), &response); err != nil {
		return "", err
	}
	return domain.Summary(response.Response), nil
}

func (c *Client) Keywords(ctx context.Context, filename string) (domain.KeywordText, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "keywords", "/api/keyword", filenameBody(filename), &response); err != nil {
		return "", err
	}
	return domain.KeywordText(response.Response), nil
}

// BreakerState reports the circuit state guarding one client operation.
func (c *Client) BreakerState(operation string) string {
	if c.executor == nil {
		return "disabled"
	}
	return c.executor.State("gateway." + operation)
}

func filenameBody(filename string) map[string]string {
	return map[string]string{"filename": filename}
}
