// Package ocr recognizes text in scanned documents by delegating to
// external OCR services over HTTP. Providers are tried in priority order;
// the first useful result wins. Running with zero providers is a valid
// configuration and simply yields no text.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// minUsefulLen filters out OCR noise: results at or below this length are
// treated as a miss and the next provider is tried.
const minUsefulLen = 20

// Provider is one OCR service endpoint accepting a multipart file upload
// and answering {"success": bool, "text"|"latex": string, "error": string}.
type Provider struct {
	Name string
	URL  string
}

// Chain tries providers in order.
type Chain struct {
	providers  []Provider
	httpClient *http.Client
	logger     *slog.Logger
}

func NewChain(providers []Provider, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		providers: providers,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Configured reports whether any provider is available.
func (c *Chain) Configured() bool {
	return len(c.providers) > 0
}

type ocrResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Latex   string `json:"latex"`
	Error   string `json:"error"`
}

// Recognize sends the document to each provider until one returns a
// non-trivial result. Provider failures are logged and skipped; exhausting
// the chain returns empty text, not an error, since OCR is best-effort.
func (c *Chain) Recognize(ctx context.Context, filename string, data []byte) string {
	for _, p := range c.providers {
		text, err := c.recognizeOne(ctx, p, filename, data)
		if err != nil {
			c.logger.Warn("ocr provider failed",
				"provider", p.Name,
				"error", err)
			continue
		}
		if len(text) <= minUsefulLen {
			c.logger.Info("ocr provider returned too little text, trying next",
				"provider", p.Name,
				"length", len(text))
			continue
		}
		c.logger.Info("ocr succeeded",
			"provider", p.Name,
			"length", len(text))
		return text
	}
	return ""
}

func (c *Chain) recognizeOne(ctx context.Context, p Provider, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var r ocrResponse
	if err := json.Unmarshal(respBody, &r); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !r.Success {
		return "", fmt.Errorf("provider error: %s", r.Error)
	}
	if text := strings.TrimSpace(r.Text); text != "" {
		return text, nil
	}
	return strings.TrimSpace(r.Latex), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
