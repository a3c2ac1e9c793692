package addressing

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ConversationKind distinguishes one-to-one chats from group chats.
type ConversationKind int

const (
	// Private is a one-to-one conversation with the bot.
	Private ConversationKind = iota
	// MultiParty is a group or supergroup conversation.
	MultiParty
)

// MentionKind is the annotation type attached to a mention span.
type MentionKind string

const (
	// MentionInline is an "@username" mention resolved by text.
	MentionInline MentionKind = "mention"
	// MentionUserRef is a mention resolved to a concrete user ID
	// (Telegram "text_mention", used for users without a username).
	MentionUserRef MentionKind = "text_mention"
)

// Mention is one mention annotation on the message text. Offset and
// Length are in UTF-16 code units, as delivered by the chat transport.
type Mention struct {
	Kind   MentionKind
	Offset int
	Length int
	// UserID is the referenced user for MentionUserRef annotations.
	UserID int64
}

// Input carries everything the resolver needs about one message.
type Input struct {
	Text        string
	Mentions    []Mention
	Kind        ConversationKind
	ReplyToBot  bool
	BotUsername string
	BotID       int64
}

// Result is the resolver's decision for one message.
type Result struct {
	// Addressed reports that the message was directed at the bot.
	Addressed bool
	// Process reports that the message should be forwarded to the
	// agent. Bare conversion queries in groups are processed without
	// being addressed; an addressed message whose text is empty after
	// cleanup is addressed but not processed.
	Process bool
	// CleanedText is the text to forward, with bot references removed
	// and whitespace collapsed.
	CleanedText string
}

// conversionPattern matches bare price-conversion queries such as
// "1 BTC", "1.5 eth idr" or "1 BTC to USD". These are answered in
// groups even without a mention.
var conversionPattern = regexp.MustCompile(
	`(?i)^\s*\d+(?:[.,]\d+)?\s*[A-Za-z0-9]{2,10}(?:\s*(?:to)?\s*[A-Za-z]{2,10})?\s*$`)

// Resolve applies the addressing rules to one message.
func Resolve(in Input) Result {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Result{}
	}

	// One-to-one chats need no mention; forward as-is.
	if in.Kind == Private {
		return Result{Addressed: true, Process: true, CleanedText: text}
	}

	tag := ""
	if in.BotUsername != "" {
		tag = "@" + in.BotUsername
	}

	addressed := in.ReplyToBot || mentionsBot(in.Text, in.Mentions, tag, in.BotID)
	if !addressed && containsFold(text, tag) {
		// Some clients omit mention annotations; the literal tag in
		// the body still counts.
		addressed = true
	}

	if !addressed {
		if conversionPattern.MatchString(text) {
			return Result{Process: true, CleanedText: text}
		}
		return Result{}
	}

	cleaned := removeBotMentionSpans(in.Text, in.Mentions, tag, in.BotID)
	if containsFold(cleaned, tag) {
		// Annotation mismatch or annotation-less mention: drop the
		// first literal occurrence.
		cleaned = removeFirstFold(cleaned, tag)
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return Result{Addressed: true}
	}
	return Result{Addressed: true, Process: true, CleanedText: cleaned}
}

// mentionsBot reports whether any annotation references the bot.
func mentionsBot(text string, mentions []Mention, tag string, botID int64) bool {
	for _, m := range mentions {
		switch m.Kind {
		case MentionInline:
			if tag != "" && strings.EqualFold(sliceByUTF16(text, m.Offset, m.Length), tag) {
				return true
			}
		case MentionUserRef:
			if m.UserID != 0 && m.UserID == botID {
				return true
			}
		}
	}
	return false
}

// removeBotMentionSpans rebuilds the text without the annotation spans
// that reference the bot. A single forward pass over sorted spans avoids
// offset drift as spans are dropped.
func removeBotMentionSpans(text string, mentions []Mention, tag string, botID int64) string {
	type span struct{ start, end int }
	var spans []span
	for _, m := range mentions {
		remove := false
		switch m.Kind {
		case MentionInline:
			remove = tag != "" && strings.EqualFold(sliceByUTF16(text, m.Offset, m.Length), tag)
		case MentionUserRef:
			remove = m.UserID != 0 && m.UserID == botID
		}
		if remove {
			spans = append(spans, span{
				start: utf16OffsetToByteIndex(text, m.Offset),
				end:   utf16OffsetToByteIndex(text, m.Offset+m.Length),
			})
		}
	}
	if len(spans) == 0 {
		return text
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	cursor := 0
	for _, sp := range spans {
		if sp.start < cursor {
			continue
		}
		b.WriteString(text[cursor:sp.start])
		cursor = sp.end
	}
	b.WriteString(text[cursor:])
	return b.String()
}

// containsFold reports whether s contains substr case-insensitively.
func containsFold(s, substr string) bool {
	i, _ := indexFold(s, substr)
	return i >= 0
}

// removeFirstFold replaces the first case-insensitive occurrence of
// substr with a single space.
func removeFirstFold(s, substr string) string {
	i, n := indexFold(s, substr)
	if i < 0 {
		return s
	}
	return s[:i] + " " + s[i+n:]
}

// indexFold locates the first case-insensitive occurrence of substr in
// s, returning its byte offset and byte length, or (-1, 0). Offsets are
// computed on s itself; case folding can change a rune's UTF-8 length,
// so indexes found on a lowered copy would not be safe to apply here.
func indexFold(s, substr string) (int, int) {
	if substr == "" {
		return -1, 0
	}
	want := []rune(substr)
	for i := range s {
		j := i
		matched := true
		for _, wr := range want {
			r, size := utf8.DecodeRuneInString(s[j:])
			if size == 0 || !runeEqualFold(r, wr) {
				matched = false
				break
			}
			j += size
		}
		if matched {
			return i, j - i
		}
	}
	return -1, 0
}

// runeEqualFold reports whether two runes are equal under simple
// Unicode case folding.
func runeEqualFold(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}
