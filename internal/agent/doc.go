// Package agent implements the HTTP client for the Skel Crypto Agent
// service. The service answers one prompt per request over a streamed,
// SSE-framed response body; the client keeps one agent session per
// conversation key and extracts a single final answer per turn.
package agent
