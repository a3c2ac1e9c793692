package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/skel-labs/skelbot/internal/event"
	"github.com/skel-labs/skelbot/internal/i18n"
	"github.com/skel-labs/skelbot/internal/logging"
	"github.com/skel-labs/skelbot/internal/telegram"
)

// Agent is the reasoning backend for conversation turns.
type Agent interface {
	Send(ctx context.Context, conversationKey, prompt string) (string, error)
	Reset(conversationKey string)
}

// Sender is the Bot API surface the handlers need.
type Sender interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
	GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error)
}

// Bot routes updates to handlers.
type Bot struct {
	agent Agent
	tg    Sender
	prefs *i18n.Prefs
	bus   *event.Bus
	self  *telegram.User
}

// New creates a bot acting as the given account.
func New(agent Agent, tg Sender, prefs *i18n.Prefs, bus *event.Bus, self *telegram.User) *Bot {
	return &Bot{agent: agent, tg: tg, prefs: prefs, bus: bus, self: self}
}

// HandleUpdate processes one update. It never panics outward: a broken
// update is logged and dropped so the poll loop keeps running.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Int64("updateID", upd.UpdateID).
				Interface("panic", r).Msg("update handler panicked")
		}
	}()

	msg := upd.Msg()
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.From != nil && msg.From.IsBot {
		return
	}

	text, entities := msg.TextOrCaption()
	if name, args, ok := parseCommand(text, entities, b.self.Username); ok {
		if name == "" {
			// Command addressed to another bot in the chat.
			return
		}
		b.handleCommand(ctx, msg, name, args)
		return
	}
	b.handleText(ctx, msg, text, entities)
}

func (b *Bot) handleCommand(ctx context.Context, msg *telegram.Message, name string, args []string) {
	key := b.conversationKey(msg)
	b.publish(event.MessageReceived, key, msg.Chat.ID, "/"+name)

	switch name {
	case "start":
		b.handleStart(ctx, msg)
	case "reset":
		b.handleReset(ctx, msg)
	case "help":
		b.handleHelp(ctx, msg)
	case "lang":
		b.handleLang(ctx, msg, args)
	case "project":
		b.handleProject(ctx, msg, args)
	case "gas":
		b.handleGas(ctx, msg, args)
	case "rpc":
		b.handleRPC(ctx, msg, args)
	default:
		b.publish(event.MessageIgnored, key, msg.Chat.ID, "unknown command")
	}
}

// parseCommand extracts a leading slash command. ok is false when the
// text is not a command at all; a command explicitly targeted at a
// different bot ("/help@other_bot") comes back ok with an empty name.
func parseCommand(text string, entities []telegram.Entity, botUsername string) (name string, args []string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", nil, false
	}
	if !hasLeadingCommandEntity(entities) && text != trimmed {
		// Telegram only marks commands at offset zero.
		return "", nil, false
	}

	fields := strings.Fields(trimmed)
	token := strings.TrimPrefix(fields[0], "/")
	if token == "" {
		return "", nil, false
	}
	if at := strings.IndexByte(token, '@'); at >= 0 {
		target := token[at+1:]
		token = token[:at]
		if target != "" && !strings.EqualFold(target, botUsername) {
			return "", nil, true
		}
	}
	return strings.ToLower(token), fields[1:], true
}

func hasLeadingCommandEntity(entities []telegram.Entity) bool {
	for _, e := range entities {
		if e.Type == telegram.EntityBotCommand && e.Offset == 0 {
			return true
		}
	}
	return false
}

// conversationKey derives the agent session key: per chat in private
// conversations, per chat and user in groups so members do not share
// history.
func (b *Bot) conversationKey(msg *telegram.Message) string {
	if msg.Chat.IsGroup() && msg.From != nil {
		return fmt.Sprintf("%d:%d", msg.Chat.ID, msg.From.ID)
	}
	return strconv.FormatInt(msg.Chat.ID, 10)
}

func (b *Bot) lang(chatID int64) string {
	return b.prefs.Get(chatID)
}

// reply sends text quoting the handled message. Delivery failures are
// logged, not propagated: there is nobody upstream to retry.
func (b *Bot) reply(ctx context.Context, msg *telegram.Message, req telegram.SendMessageRequest) {
	req.ChatID = msg.Chat.ID
	req.ReplyToMessageID = msg.MessageID
	if err := b.tg.SendMessage(ctx, req); err != nil {
		logging.Error().Err(err).Int64("chatID", msg.Chat.ID).Msg("sendMessage failed")
	}
}

func (b *Bot) publish(typ event.Type, key string, chatID int64, detail string) {
	if b.bus == nil {
		return
	}
	b.bus.Publish(event.Event{
		Type:            typ,
		ConversationKey: key,
		ChatID:          chatID,
		Detail:          detail,
	})
}
