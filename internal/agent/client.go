package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the external conversational-agent runtime over HTTP.
// The runtime is opaque; this client only submits input turns and actions.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type messageRequest struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type messageResponse struct {
	Text string `json:"text"`
}

type actionRequest struct {
	Action  string            `json:"action"`
	Payload map[string]string `json:"payload,omitempty"`
}

// ComposeResponse submits one input turn under a conversation identity and
// returns the runtime's reply text.
func (c *Client) ComposeResponse(ctx context.Context, input, conversationID string) (string, error) {
	req := messageRequest{
		UserID:         conversationID,
		ConversationID: conversationID,
		Text:           input,
	}
	var resp messageResponse
	if err := c.post(ctx, "/message", req, &resp); err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "", fmt.Errorf("agent runtime returned an empty response")
	}
	return resp.Text, nil
}

// RunAction invokes a named action on the runtime.
func (c *Client) RunAction(ctx context.Context, name string, payload map[string]string) error {
	return c.post(ctx, "/action", actionRequest{Action: name, Payload: payload}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("agent runtime: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
