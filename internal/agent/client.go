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

	"github.com/oklog/ulid/v2"

	"github.com/skel-labs/skelbot/internal/logging"
)

// DefaultTimeout bounds one full request/stream exchange with the agent.
const DefaultTimeout = 60 * time.Second

// Config holds client configuration.
type Config struct {
	// BaseURL is the agent service root, without a trailing slash.
	BaseURL string
	// ProcessorID identifies this bot deployment to the agent.
	ProcessorID string
	// Timeout bounds one Send exchange end to end. Defaults to
	// DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the Skel Crypto Agent service. It is safe for
// concurrent use; turns for the same conversation may run in parallel
// and share the session's activity ID.
type Client struct {
	baseURL     string
	processorID string
	http        *http.Client
	sessions    *sessionTable
}

// New creates a client. Close releases the transport's idle connections.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		processorID: cfg.ProcessorID,
		http:        httpClient,
		sessions:    newSessionTable(),
	}
}

// assistRequest is the wire envelope for one turn.
type assistRequest struct {
	Query   queryEnvelope   `json:"query"`
	Session sessionEnvelope `json:"session"`
}

type queryEnvelope struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

type sessionEnvelope struct {
	ProcessorID  string `json:"processor_id"`
	ActivityID   string `json:"activity_id"`
	RequestID    string `json:"request_id"`
	Interactions []any  `json:"interactions"`
}

// Send forwards prompt to the agent on the session belonging to
// conversationKey and returns the agent's final answer. The session is
// created lazily on first use. Exactly one streamed POST is issued per
// call; no retries. All failure modes surface as *Error.
func (c *Client) Send(ctx context.Context, conversationKey, prompt string) (string, error) {
	session := c.sessions.ensure(conversationKey)

	body := assistRequest{
		Query: queryEnvelope{
			ID:     newID(),
			Prompt: prompt,
		},
		Session: sessionEnvelope{
			ProcessorID:  c.processorID,
			ActivityID:   session.ActivityID,
			RequestID:    newID(),
			Interactions: []any{},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", newError("failed to encode agent request", err)
	}

	url := c.baseURL + "/assist"
	logging.Debug().
		Str("url", url).
		Str("activityID", session.ActivityID).
		Msg("posting prompt to agent")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", newError("failed to build agent request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Error().Err(err).Str("url", url).Msg("agent request failed")
		return "", newError("failed to contact the agent", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("agent http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		logging.Error().Err(err).Str("url", url).Msg("agent returned non-success status")
		return "", newError("failed to contact the agent", err)
	}

	var chunks []string
	var errorMessage string

	dec := NewDecoder(resp.Body)
	for {
		ev, ok := dec.Next()
		if !ok {
			break
		}
		switch p := ev.Payload.(type) {
		case *FinalResponsePayload:
			if p.ContentType == contentTypeTextBlock {
				chunks = append(chunks, p.Content)
			}
		case *ErrorPayload:
			errorMessage = p.Message()
		}
	}
	if err := dec.Err(); err != nil {
		logging.Error().Err(err).Str("url", url).Msg("agent stream aborted")
		return "", newError("failed to contact the agent", err)
	}

	// An explicit agent error outranks any partial answer.
	if errorMessage != "" {
		return "", newError(errorMessage, nil)
	}

	answer := strings.TrimSpace(strings.Join(chunks, ""))
	if answer == "" {
		return "", newError("the agent did not send a reply", nil)
	}
	return answer, nil
}

// Reset drops the session for conversationKey; the next Send creates a
// fresh one with a new activity ID. No-op for unknown keys.
func (c *Client) Reset(conversationKey string) {
	c.sessions.remove(conversationKey)
}

// Close releases the underlying connection pool. Idempotent.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// newID generates a new ULID. ULIDs are unique per process and sort
// lexicographically by creation time.
func newID() string {
	return ulid.Make().String()
}
