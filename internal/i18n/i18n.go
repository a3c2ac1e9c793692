// Package i18n provides the bot's localized user-facing text. Bundles
// are embedded YAML files, one per language; unknown languages and keys
// fall back to English.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/skel-labs/skelbot/internal/logging"
)

// Supported language codes.
const (
	LangEN = "EN"
	LangID = "ID"
)

// DefaultLang is used when no preference is recorded.
const DefaultLang = LangEN

//go:embed locales/*.yaml
var localeFS embed.FS

var bundles = loadBundles()

var displayNames = map[string]string{
	LangEN: "English",
	LangID: "Bahasa Indonesia",
}

func loadBundles() map[string]map[string]string {
	out := make(map[string]map[string]string)
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		panic(fmt.Sprintf("i18n: reading embedded locales: %v", err))
	}
	for _, entry := range entries {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			panic(fmt.Sprintf("i18n: reading %s: %v", entry.Name(), err))
		}
		var bundle map[string]string
		if err := yaml.Unmarshal(data, &bundle); err != nil {
			panic(fmt.Sprintf("i18n: parsing %s: %v", entry.Name(), err))
		}
		lang := strings.ToUpper(strings.TrimSuffix(entry.Name(), ".yaml"))
		out[lang] = bundle
	}
	if _, ok := out[DefaultLang]; !ok {
		panic("i18n: default language bundle missing")
	}
	return out
}

// Supported returns the supported language codes, sorted.
func Supported() []string {
	codes := make([]string, 0, len(bundles))
	for code := range bundles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsSupported reports whether code (case-insensitive) has a bundle.
func IsSupported(code string) bool {
	_, ok := bundles[strings.ToUpper(code)]
	return ok
}

// DisplayName returns the human-readable name for a language code.
func DisplayName(code string) string {
	if name, ok := displayNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// Msg returns the text for key in lang, formatted with args. Unknown
// languages fall back to English; unknown keys fall back to the English
// bundle and finally to the key itself.
func Msg(lang, key string, args ...any) string {
	bundle, ok := bundles[strings.ToUpper(lang)]
	if !ok {
		bundle = bundles[DefaultLang]
	}
	text, ok := bundle[key]
	if !ok {
		text, ok = bundles[DefaultLang][key]
		if !ok {
			logging.Warn().Str("key", key).Msg("missing i18n key")
			return key
		}
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// Suggest returns the supported language code closest to the given
// input by edit distance, for "did you mean" guidance. It returns ""
// when nothing is close enough to be worth suggesting.
func Suggest(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	best := ""
	bestDist := -1
	for _, candidate := range Supported() {
		d := levenshtein.ComputeDistance(code, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > 2 {
		return ""
	}
	return best
}
