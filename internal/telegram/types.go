package telegram

// Wire types for the subset of the Telegram Bot API the bot uses.

// Update is one item from getUpdates or a webhook delivery.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
	// Some clients @mention by editing an existing message.
	EditedMessage *Message `json:"edited_message,omitempty"`
}

// Msg returns the message carried by the update, if any.
func (u *Update) Msg() *Message {
	if u.Message != nil {
		return u.Message
	}
	return u.EditedMessage
}

// Message is an inbound or quoted chat message.
type Message struct {
	MessageID       int64    `json:"message_id"`
	Date            int64    `json:"date,omitempty"`
	Chat            *Chat    `json:"chat,omitempty"`
	From            *User    `json:"from,omitempty"`
	ReplyTo         *Message `json:"reply_to_message,omitempty"`
	Text            string   `json:"text,omitempty"`
	Caption         string   `json:"caption,omitempty"`
	Entities        []Entity `json:"entities,omitempty"`
	CaptionEntities []Entity `json:"caption_entities,omitempty"`
}

// TextOrCaption returns the message body: media messages carry their
// text in the caption.
func (m *Message) TextOrCaption() (string, []Entity) {
	if m.Text != "" {
		return m.Text, m.Entities
	}
	return m.Caption, m.CaptionEntities
}

// Chat types as sent on the wire.
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
)

// Chat identifies a conversation.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// IsGroup reports whether the chat is a multi-party conversation.
func (c *Chat) IsGroup() bool {
	return c.Type == ChatTypeGroup || c.Type == ChatTypeSupergroup
}

// User is a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Entity types the bot inspects.
const (
	EntityMention     = "mention"
	EntityTextMention = "text_mention"
	EntityBotCommand  = "bot_command"
)

// Entity annotates a span of message text. Offset and Length are in
// UTF-16 code units.
type Entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	// User is set for text_mention entities.
	User *User `json:"user,omitempty"`
}

// ChatMember is a user's membership record in a chat.
type ChatMember struct {
	Status string `json:"status"`
	User   *User  `json:"user,omitempty"`
}

// Administrator-level member statuses.
const (
	MemberStatusCreator       = "creator"
	MemberStatusOwner         = "owner"
	MemberStatusAdministrator = "administrator"
)

// IsAdmin reports whether the member can manage the chat.
func (m *ChatMember) IsAdmin() bool {
	switch m.Status {
	case MemberStatusCreator, MemberStatusOwner, MemberStatusAdministrator:
		return true
	}
	return false
}

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// InlineKeyboardMarkup is an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// SendMessageRequest is the sendMessage call payload.
type SendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
	ReplyToMessageID      int64                 `json:"reply_to_message_id,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// ParseModeHTML renders Telegram's HTML tag subset.
const ParseModeHTML = "HTML"

// ChatActionTyping shows a "typing…" indicator.
const ChatActionTyping = "typing"
