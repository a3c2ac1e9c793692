package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, FatalLevel, ParseLevel("FATAL"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestDynamicLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, Output: &buf})
	defer Init(DefaultConfig())

	Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	SetLevel(DebugLevel)
	Debug().Msg("visible")
	assert.True(t, strings.Contains(buf.String(), "visible"))

	Info().Msg("still here")
	assert.True(t, strings.Contains(buf.String(), "still here"))
}
