package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"bgswatch/internal/fault"
)

const DefaultTimeout = 10 * time.Second

type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Client posts messages to webhook URLs. Every request is bounded by the
// client timeout regardless of the caller's context.
type Client struct {
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(httpClient *http.Client, timeout time.Duration, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{http: httpClient, timeout: timeout, logger: logger}
}

// SendEmbeds batches embeds and posts each chunk to url in order. It stops
// at the first failed chunk so later chunks never arrive without their
// predecessors.
func (c *Client) SendEmbeds(ctx context.Context, url string, embeds []Embed) error {
	chunks := Batch(embeds)
	for i, chunk := range chunks {
		if err := c.post(ctx, url, Message{Embeds: chunk}); err != nil {
			return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (c *Client) SendText(ctx context.Context, url, content string) error {
	return c.post(ctx, url, Message{Content: content})
}

func (c *Client) post(ctx context.Context, url string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding webhook message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fault.Network("building webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fault.Network("posting webhook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fault.Network("posting webhook", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("webhook delivered", "embeds", len(msg.Embeds), "bytes", len(body))
	return nil
}
