package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saigon-transit/service-route/internal/config"
)

// Client is a minimal Bot API client covering exactly what the bot needs:
// long polling, sending prompts with inline keyboards, collapsing keyboard
// messages and acknowledging button presses.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	pollTimeout time.Duration
}

// NewClient creates a Bot API client.
func NewClient(cfg config.TelegramConfig) *Client {
	return &Client{
		// The long-poll request itself must outlive the poll timeout.
		httpClient:  &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
		baseURL:     fmt.Sprintf("%s/bot%s", cfg.APIBase, cfg.Token),
		pollTimeout: cfg.PollTimeout,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("%s rejected: %s", method, api.Description)
	}
	if result != nil {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for updates after the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         int(c.pollTimeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a message and returns its ID.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (int64, error) {
	var sent IncomingMsg
	if err := c.call(ctx, "sendMessage", req, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessageText rewrites a previously sent message, dropping any inline
// keyboard it carried.
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	return c.call(ctx, "editMessageText", req, nil)
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing its progress spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackRequest) error {
	return c.call(ctx, "answerCallbackQuery", req, nil)
}
