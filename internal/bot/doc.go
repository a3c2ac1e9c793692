// Package bot implements the chat front-end: it dispatches Telegram
// updates to command handlers, gates group messages through the
// addressing rules, and forwards user turns to the reasoning agent.
package bot
