package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RendererClient calls the document rendering service that turns a confirmed
// reservation into ticket and invoice PDFs. Rendering itself is out of scope
// here; this is the narrow interface the engine consumes it through.
type RendererClient struct {
	baseURL    string
	httpClient *http.Client
}

type RendererConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewRendererClient(cfg RendererConfig) *RendererClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &RendererClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (rc *RendererClient) render(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// RenderTicket produces the ticket PDF for the given payload.
func (rc *RendererClient) RenderTicket(ctx context.Context, payload interface{}) ([]byte, error) {
	return rc.render(ctx, "/api/v1/render/ticket", payload)
}

// RenderInvoice produces the invoice PDF for the given payload.
func (rc *RendererClient) RenderInvoice(ctx context.Context, payload interface{}) ([]byte, error) {
	return rc.render(ctx, "/api/v1/render/invoice", payload)
}
