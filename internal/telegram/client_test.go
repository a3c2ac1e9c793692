package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.Client(), srv.URL, "123:abc")
}

func TestGetMe(t *testing.T) {
	_, client := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/getMe", r.URL.Path)
		fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"username":"skel_crypto_bot"}}`)
	})

	user, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "skel_crypto_bot", user.Username)
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	_, client := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Offset  int64 `json:"offset"`
			Timeout int   `json:"timeout"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, int64(10), params.Offset)
		assert.Equal(t, 1, params.Timeout)
		fmt.Fprint(w, `{"ok":true,"result":[{"update_id":11},{"update_id":13}]}`)
	})

	updates, next, err := client.GetUpdates(context.Background(), 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, updates, 2)
	assert.Equal(t, int64(14), next)
}

func TestSendMessageEnvelope(t *testing.T) {
	var got SendMessageRequest
	_, client := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true,"result":{}}`)
	})

	err := client.SendMessage(context.Background(), SendMessageRequest{
		ChatID:                7,
		Text:                  "hello",
		ParseMode:             ParseModeHTML,
		DisableWebPagePreview: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ChatID)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, ParseModeHTML, got.ParseMode)
}

func TestAPIErrorSurfaces(t *testing.T) {
	_, client := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	})

	err := client.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestHTTPErrorSurfaces(t *testing.T) {
	_, client := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway", http.StatusBadGateway)
	})

	_, err := client.GetMe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGetChatMember(t *testing.T) {
	_, client := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"status":"administrator","user":{"id":9}}}`)
	})

	member, err := client.GetChatMember(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.True(t, member.IsAdmin())
}

func TestChatMemberIsAdmin(t *testing.T) {
	assert.True(t, (&ChatMember{Status: "creator"}).IsAdmin())
	assert.True(t, (&ChatMember{Status: "owner"}).IsAdmin())
	assert.False(t, (&ChatMember{Status: "member"}).IsAdmin())
}

func TestPollerDispatchesUpdates(t *testing.T) {
	var calls atomic.Int64
	_, client := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":1,"message":{"message_id":5,"text":"hi"}}]}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan Update, 1)
	poller := NewPoller(client, time.Second, func(_ context.Context, upd Update) {
		select {
		case received <- upd:
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	select {
	case upd := <-received:
		assert.Equal(t, int64(5), upd.Msg().MessageID)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not dispatch update")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestUpdateMsgPrefersMessage(t *testing.T) {
	m1, m2 := &Message{MessageID: 1}, &Message{MessageID: 2}
	assert.Equal(t, m1, (&Update{Message: m1, EditedMessage: m2}).Msg())
	assert.Equal(t, m2, (&Update{EditedMessage: m2}).Msg())
}

func TestTextOrCaption(t *testing.T) {
	m := &Message{Caption: "pic caption", CaptionEntities: []Entity{{Type: EntityMention}}}
	text, entities := m.TextOrCaption()
	assert.Equal(t, "pic caption", text)
	require.Len(t, entities, 1)
}
