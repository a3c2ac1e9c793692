// Package addressing decides whether an incoming message is directed at
// the bot and strips bot-reference markup before the text is forwarded.
// In private chats every message is addressed; in groups the bot answers
// replies to its own messages, mentions, and bare price-conversion
// queries, and ignores everything else.
package addressing
