package i18n

import (
	"strings"
	"sync"
)

// Prefs records per-chat language preferences for the process lifetime.
// Safe for concurrent use.
type Prefs struct {
	mu     sync.RWMutex
	byChat map[int64]string
	def    string
}

// NewPrefs creates a preference store with the given default language.
// An unsupported default silently becomes DefaultLang.
func NewPrefs(defaultLang string) *Prefs {
	def := strings.ToUpper(defaultLang)
	if !IsSupported(def) {
		def = DefaultLang
	}
	return &Prefs{byChat: make(map[int64]string), def: def}
}

// Get returns the language for a chat, or the default.
func (p *Prefs) Get(chatID int64) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if lang, ok := p.byChat[chatID]; ok {
		return lang
	}
	return p.def
}

// Set records the language for a chat. Unsupported codes are ignored.
func (p *Prefs) Set(chatID int64, lang string) {
	lang = strings.ToUpper(lang)
	if !IsSupported(lang) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byChat[chatID] = lang
}
