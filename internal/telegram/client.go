// Package telegram is a minimal Telegram Bot API client covering the
// calls the bot needs: identity, long polling, message delivery, chat
// membership, and webhook management.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client issues Bot API calls. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a client. A nil httpClient gets a 60s-timeout
// default; the poller supplies per-request contexts on top.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// apiResponse is the uniform Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// call posts params as JSON to the given method and decodes the result
// into out (which may be nil for calls whose result is irrelevant).
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	var body io.Reader
	if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("telegram %s: encoding params: %w", method, err)
		}
		body = bytes.NewReader(payload)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram %s: http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("telegram %s: decoding response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s: api error %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decoding result: %w", method, err)
		}
	}
	return nil
}

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "getMe", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUpdates long-polls for updates and returns them together with the
// next offset to acknowledge them.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}

	params := struct {
		Offset  int64 `json:"offset,omitempty"`
		Timeout int   `json:"timeout"`
	}{Offset: offset, Timeout: secs}

	// Leave headroom beyond the server-side poll window.
	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	var updates []Update
	if err := c.call(reqCtx, "getUpdates", params, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// SendMessage delivers a message.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	return c.call(ctx, "sendMessage", req, nil)
}

// SendChatAction shows a chat action ("typing") while a turn runs.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	params := struct {
		ChatID int64  `json:"chat_id"`
		Action string `json:"action"`
	}{ChatID: chatID, Action: action}
	return c.call(ctx, "sendChatAction", params, nil)
}

// GetChatMember returns a user's membership in a chat.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	params := struct {
		ChatID int64 `json:"chat_id"`
		UserID int64 `json:"user_id"`
	}{ChatID: chatID, UserID: userID}
	var member ChatMember
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// SetWebhook registers url for update delivery.
func (c *Client) SetWebhook(ctx context.Context, url string, dropPending bool) error {
	params := struct {
		URL                string `json:"url"`
		DropPendingUpdates bool   `json:"drop_pending_updates,omitempty"`
	}{URL: url, DropPendingUpdates: dropPending}
	return c.call(ctx, "setWebhook", params, nil)
}

// DeleteWebhook removes a registered webhook so polling can take over.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", nil, nil)
}

// IsPollTimeout reports whether err is the expected expiry of an empty
// long poll rather than a real failure.
func IsPollTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "client.timeout exceeded")
}
