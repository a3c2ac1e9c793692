package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKeepsSupportedTags(t *testing.T) {
	in := `gas on <b>ethereum</b> is <code>12 gwei</code>`
	assert.Equal(t, in, Sanitize(in))
}

func TestSanitizeUnwrapsUnsupportedTags(t *testing.T) {
	in := `<table><tr><td>eth</td><td>12</td></tr></table>`
	assert.Equal(t, "eth12", Sanitize(in))
}

func TestSanitizeKeepsLinkHref(t *testing.T) {
	in := `<a href="https://skel.network" target="_blank">Skel</a>`
	assert.Equal(t, `<a href="https://skel.network">Skel</a>`, Sanitize(in))
}

func TestSanitizeDropsScripts(t *testing.T) {
	in := `before<script>alert(1)</script>after`
	assert.Equal(t, "beforeafter", Sanitize(in))
}

func TestSanitizeBlockTagsBreakLines(t *testing.T) {
	in := `<p>first</p><p>second</p>`
	assert.Equal(t, "first\nsecond", Sanitize(in))
}

func TestSanitizeBrBecomesNewline(t *testing.T) {
	assert.Equal(t, "a\nb", Sanitize("a<br>b"))
}

func TestSanitizeEscapesText(t *testing.T) {
	assert.Equal(t, "1 &lt; 2 &amp; 3", Sanitize("1 < 2 & 3"))
}

func TestSanitizeSpoilerSpan(t *testing.T) {
	in := `<span class="tg-spoiler">secret</span>`
	assert.Equal(t, `<tg-spoiler>secret</tg-spoiler>`, Sanitize(in))
	assert.Equal(t, "plain", Sanitize(`<span class="note">plain</span>`))
}

func TestSanitizeCodeLanguageClass(t *testing.T) {
	in := `<pre><code class="language-go">x := 1</code></pre>`
	assert.Equal(t, in, Sanitize(in))
}

func TestSanitizePlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "just words", Sanitize("  just words  "))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;raw&lt;/b&gt;", Escape("<b>raw</b>"))
}
