package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skel-labs/skelbot/internal/addressing"
	"github.com/skel-labs/skelbot/internal/event"
	"github.com/skel-labs/skelbot/internal/gasquery"
	"github.com/skel-labs/skelbot/internal/i18n"
	"github.com/skel-labs/skelbot/internal/logging"
	"github.com/skel-labs/skelbot/internal/render"
	"github.com/skel-labs/skelbot/internal/telegram"
)

func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	b.agent.Reset(b.conversationKey(msg))
	b.publish(event.SessionReset, b.conversationKey(msg), chatID, "/start")

	lang := b.lang(chatID)
	logging.Info().Int64("chatID", chatID).Str("lang", lang).Msg("start")

	inviteURL := fmt.Sprintf("https://t.me/%s?startgroup=true", b.self.Username)
	b.reply(ctx, msg, telegram.SendMessageRequest{
		Text:                  i18n.Msg(lang, "start_greeting"),
		DisableWebPagePreview: true,
		ReplyMarkup: &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{{
				{Text: i18n.Msg(lang, "invite_button"), URL: inviteURL},
			}},
		},
	})
}

func (b *Bot) handleReset(ctx context.Context, msg *telegram.Message) {
	key := b.conversationKey(msg)
	lang := b.lang(msg.Chat.ID)
	logging.Info().Str("conversation", key).Str("lang", lang).Msg("reset")

	b.agent.Reset(key)
	b.publish(event.SessionReset, key, msg.Chat.ID, "/reset")
	b.reply(ctx, msg, telegram.SendMessageRequest{Text: i18n.Msg(lang, "reset_done")})
}

func (b *Bot) handleHelp(ctx context.Context, msg *telegram.Message) {
	lang := b.lang(msg.Chat.ID)
	b.reply(ctx, msg, telegram.SendMessageRequest{
		Text:                  i18n.Msg(lang, "help_text"),
		DisableWebPagePreview: true,
	})
}

func (b *Bot) handleLang(ctx context.Context, msg *telegram.Message, args []string) {
	chatID := msg.Chat.ID
	current := b.lang(chatID)

	if len(args) == 0 {
		b.reply(ctx, msg, telegram.SendMessageRequest{Text: i18n.Msg(current, "lang_usage")})
		return
	}

	requested := strings.ToUpper(args[0])
	if !i18n.IsSupported(requested) {
		text := i18n.Msg(current, "lang_invalid")
		if suggestion := i18n.Suggest(requested); suggestion != "" {
			text = i18n.Msg(current, "lang_suggest", suggestion)
		}
		b.reply(ctx, msg, telegram.SendMessageRequest{Text: text})
		return
	}

	if !b.canChangeLang(ctx, msg) {
		b.reply(ctx, msg, telegram.SendMessageRequest{Text: i18n.Msg(current, "lang_no_permission")})
		return
	}

	b.prefs.Set(chatID, requested)
	logging.Info().Int64("chatID", chatID).Str("lang", requested).Msg("language changed")
	b.reply(ctx, msg, telegram.SendMessageRequest{
		Text: i18n.Msg(requested, "lang_set", i18n.DisplayName(requested)),
	})
}

// canChangeLang allows anyone in private chats and only administrators
// in groups.
func (b *Bot) canChangeLang(ctx context.Context, msg *telegram.Message) bool {
	if !msg.Chat.IsGroup() {
		return true
	}
	if msg.From == nil {
		return false
	}
	member, err := b.tg.GetChatMember(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		logging.Warn().Err(err).Int64("chatID", msg.Chat.ID).Msg("getChatMember failed")
		return false
	}
	return member.IsAdmin()
}

func (b *Bot) handleProject(ctx context.Context, msg *telegram.Message, args []string) {
	lang := b.lang(msg.Chat.ID)

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		b.reply(ctx, msg, telegram.SendMessageRequest{
			Text:                  i18n.Msg(lang, "project_usage"),
			DisableWebPagePreview: true,
		})
		return
	}

	key := b.conversationKey(msg)
	logging.Info().Str("conversation", key).Str("query", query).Msg("project lookup")
	prompt := fmt.Sprintf("[LANG=%s][PROJECT] %s", lang, query)
	b.forwardToAgent(ctx, msg, key, lang, prompt, "agent_error")
}

func (b *Bot) handleGas(ctx context.Context, msg *telegram.Message, args []string) {
	lang := b.lang(msg.Chat.ID)
	key := b.conversationKey(msg)

	query := gasquery.Parse(args)
	payload, err := json.Marshal(query)
	if err != nil {
		b.reply(ctx, msg, telegram.SendMessageRequest{Text: i18n.Msg(lang, "gas_error")})
		return
	}

	logging.Info().Str("conversation", key).
		Str("network", query.Network).Str("currency", query.Currency).Msg("gas lookup")
	prompt := fmt.Sprintf("[LANG=%s][GAS]%s", lang, payload)
	b.forwardToAgent(ctx, msg, key, lang, prompt, "gas_error")
}

func (b *Bot) handleRPC(ctx context.Context, msg *telegram.Message, args []string) {
	lang := b.lang(msg.Chat.ID)
	key := b.conversationKey(msg)

	network := strings.TrimSpace(strings.Join(args, " "))
	payload, _ := json.Marshal(struct {
		Network *string `json:"network"`
	}{Network: optional(network)})

	logging.Info().Str("conversation", key).Str("network", network).Msg("rpc lookup")
	prompt := fmt.Sprintf("[LANG=%s][RPC]%s", lang, payload)
	b.forwardToAgent(ctx, msg, key, lang, prompt, "agent_error")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// handleText runs the free-text path: addressing rules first, then an
// agent turn with the language tag prepended.
func (b *Bot) handleText(ctx context.Context, msg *telegram.Message, text string, entities []telegram.Entity) {
	chatID := msg.Chat.ID
	lang := b.lang(chatID)
	key := b.conversationKey(msg)

	if strings.TrimSpace(text) == "" {
		// Groups are full of media the bot was never asked about;
		// warning there would be noise.
		if msg.Chat.IsGroup() {
			b.publish(event.MessageIgnored, key, chatID, "non-text")
			return
		}
		logging.Info().Int64("chatID", chatID).Msg("non-text message")
		b.reply(ctx, msg, telegram.SendMessageRequest{Text: i18n.Msg(lang, "non_text_warning")})
		return
	}

	res := addressing.Resolve(addressing.Input{
		Text:        text,
		Mentions:    mentionsOf(entities),
		Kind:        conversationKind(msg.Chat),
		ReplyToBot:  b.isReplyToMe(msg),
		BotUsername: b.self.Username,
		BotID:       b.self.ID,
	})
	if !res.Process {
		b.publish(event.MessageIgnored, key, chatID, ignoreReason(res))
		return
	}

	b.publish(event.MessageReceived, key, chatID, "text")
	prompt := fmt.Sprintf("[LANG=%s] %s", lang, res.CleanedText)
	b.forwardToAgent(ctx, msg, key, lang, prompt, "agent_error")
}

func ignoreReason(res addressing.Result) string {
	if res.Addressed {
		return "empty after cleanup"
	}
	return "not addressed"
}

func mentionsOf(entities []telegram.Entity) []addressing.Mention {
	var mentions []addressing.Mention
	for _, e := range entities {
		switch e.Type {
		case telegram.EntityMention:
			mentions = append(mentions, addressing.Mention{
				Kind: addressing.MentionInline, Offset: e.Offset, Length: e.Length,
			})
		case telegram.EntityTextMention:
			var userID int64
			if e.User != nil {
				userID = e.User.ID
			}
			mentions = append(mentions, addressing.Mention{
				Kind: addressing.MentionUserRef, Offset: e.Offset, Length: e.Length, UserID: userID,
			})
		}
	}
	return mentions
}

func conversationKind(chat *telegram.Chat) addressing.ConversationKind {
	if chat.IsGroup() {
		return addressing.MultiParty
	}
	return addressing.Private
}

func (b *Bot) isReplyToMe(msg *telegram.Message) bool {
	return msg.ReplyTo != nil && msg.ReplyTo.From != nil && msg.ReplyTo.From.ID == b.self.ID
}

// forwardToAgent runs one agent turn and delivers the reply. failureKey
// selects the localized apology when the turn fails.
func (b *Bot) forwardToAgent(ctx context.Context, msg *telegram.Message, key, lang, prompt, failureKey string) {
	if err := b.tg.SendChatAction(ctx, msg.Chat.ID, telegram.ChatActionTyping); err != nil {
		logging.Debug().Err(err).Int64("chatID", msg.Chat.ID).Msg("chat action failed")
	}

	reply, err := b.agent.Send(ctx, key, prompt)
	if err != nil {
		logging.Warn().Err(err).Str("conversation", key).Msg("agent turn failed")
		b.publish(event.AgentFailed, key, msg.Chat.ID, err.Error())
		b.reply(ctx, msg, telegram.SendMessageRequest{
			Text:      render.Escape(i18n.Msg(lang, failureKey)),
			ParseMode: telegram.ParseModeHTML,
		})
		return
	}

	b.publish(event.AgentReplied, key, msg.Chat.ID, "")
	b.reply(ctx, msg, telegram.SendMessageRequest{
		Text:                  render.Sanitize(reply),
		ParseMode:             telegram.ParseModeHTML,
		DisableWebPagePreview: true,
	})
}
