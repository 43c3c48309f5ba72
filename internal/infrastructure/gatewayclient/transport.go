package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

func (c *Client) postJSON(ctx context.Context, operation, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	return c.do(ctx, operation, path, "application/json", body, out)
}

func (c *Client) do(ctx context.Context, operation, path, contentType string, body []byte, out any) error {
	call := func(ctx context.Context) error {
		return c.roundTrip(ctx, operation, path, contentType, body, out)
	}
	if c.executor == nil {
		return call(ctx)
	}
	err := c.executor.Execute(ctx, "gateway."+operation, call, countsAsGatewayFailure)
	return wrapCircuitOpen(operation, err)
}

func (c *Client) roundTrip(ctx context.Context, operation, path, contentType string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTransport, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return fmt.Errorf("gateway %s: %w", operation, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: raw})
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.ErrUpstream, operation, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
