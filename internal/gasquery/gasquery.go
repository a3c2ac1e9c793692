// Package gasquery turns the free-form arguments of a gas-fee command
// into a (network, currency) pair. Parsing is total: unrecognized input
// falls back to Ethereum priced in USD.
package gasquery

import (
	"strings"
	"unicode"
)

// Defaults applied when arguments are missing or unrecognized.
const (
	DefaultNetwork  = "ethereum"
	DefaultCurrency = "USD"
)

// Query is a fully resolved gas-fee request.
type Query struct {
	Network  string `json:"network"`
	Currency string `json:"currency"`
}

// networkPhrases maps user-facing aliases to canonical network IDs.
// Downstream consumers key on the canonical IDs, so the alias set and
// its targets must stay stable.
var networkPhrases = map[string]string{
	"ethereum":            "ethereum",
	"ethereum mainnet":    "ethereum",
	"mainnet":             "ethereum",
	"eth":                 "ethereum",
	"base":                "base",
	"base mainnet":        "base",
	"binance smart chain": "bsc",
	"binance chain":       "bsc",
	"bnb chain":           "bsc",
	"binance":             "bsc",
	"bsc":                 "bsc",
	"bnb":                 "bsc",
	"linea":               "linea",
	"plasma":              "plasma",
	"polygon":             "plasma",
	"polygon plasma":      "plasma",
	"polygon pos":         "plasma",
	"matic":               "plasma",
}

// networkKeywords is every word that appears in a network phrase; such
// words never qualify as a currency code.
var networkKeywords = buildNetworkKeywords()

// currencyStopwords are connective words from multi-word network names
// that would otherwise look like currency codes.
var currencyStopwords = map[string]struct{}{
	"chain":   {},
	"smart":   {},
	"network": {},
	"mainnet": {},
}

func buildNetworkKeywords() map[string]struct{} {
	words := make(map[string]struct{})
	for phrase := range networkPhrases {
		for _, word := range strings.Fields(phrase) {
			words[word] = struct{}{}
		}
	}
	return words
}

// Parse resolves args into a Query. The trailing token is treated as a
// currency code when it qualifies; the rest resolve to a network via the
// phrase table, preferring the most specific interpretation: full-phrase
// match, then longest left-anchored prefix, then last matching single
// token, then the default.
func Parse(args []string) Query {
	tokens := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "" {
			tokens = append(tokens, arg)
		}
	}
	if len(tokens) == 0 {
		return Query{Network: DefaultNetwork, Currency: DefaultCurrency}
	}

	currency := DefaultCurrency
	if last := tokens[len(tokens)-1]; isCurrencyCandidate(last) {
		currency = strings.ToUpper(last)
		tokens = tokens[:len(tokens)-1]
	}

	return Query{Network: normalizeNetwork(tokens), Currency: currency}
}

// isCurrencyCandidate reports whether token looks like a fiat or ticker
// code: alphabetic, 2–5 characters, and not a network word.
func isCurrencyCandidate(token string) bool {
	lowered := strings.ToLower(token)
	if _, ok := networkKeywords[lowered]; ok {
		return false
	}
	if _, ok := currencyStopwords[lowered]; ok {
		return false
	}
	runes := []rune(lowered)
	if len(runes) < 2 || len(runes) > 5 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// normalizeNetwork resolves tokens to a canonical network ID.
func normalizeNetwork(tokens []string) string {
	if len(tokens) == 0 {
		return DefaultNetwork
	}

	normalized := strings.ToLower(strings.TrimSpace(strings.Join(tokens, " ")))
	if id, ok := networkPhrases[normalized]; ok {
		return id
	}

	parts := strings.Fields(normalized)
	for size := len(parts); size > 0; size-- {
		if id, ok := networkPhrases[strings.Join(parts[:size], " ")]; ok {
			return id
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if id, ok := networkPhrases[parts[i]]; ok {
			return id
		}
	}

	return DefaultNetwork
}
