package meetbot_test

import (
	"testing"

	"meetgogo/backend/internal/config"
	"meetgogo/backend/internal/meetbot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagConfig(prefix string, atStart bool, tags ...config.Tag) *config.Config {
	cfg := config.Default()
	cfg.TagsCommandPrefix = prefix
	cfg.TagsCommandAtStart = atStart
	if len(tags) > 0 {
		cfg.Tags = tags
	}
	return cfg
}

func TestTagMatcher_PrefixVariants(t *testing.T) {
	for _, prefix := range []string{"^", "!"} {
		matcher, err := meetbot.NewTagMatcher(tagConfig(prefix, true))
		require.NoError(t, err)

		label, ok := matcher.Match(prefix + "action pants")
		assert.True(t, ok, "prefix %q should match at line start", prefix)
		assert.Equal(t, "action", label)

		_, ok = matcher.Match("pants")
		assert.False(t, ok)
	}
}

func TestTagMatcher_AtStartRejectsMidLine(t *testing.T) {
	matcher, err := meetbot.NewTagMatcher(tagConfig("^", true))
	require.NoError(t, err)

	_, ok := matcher.Match("some stuff at the start ^action pants")
	assert.False(t, ok, "marker in the middle must not match when at_start is set")

	// Leading whitespace before the marker is stripped.
	label, ok := matcher.Match("   ^action pants")
	assert.True(t, ok)
	assert.Equal(t, "action", label)
}

func TestTagMatcher_AnywhereWhenAtStartFalse(t *testing.T) {
	matcher, err := meetbot.NewTagMatcher(tagConfig("^", false))
	require.NoError(t, err)

	label, ok := matcher.Match("some stuff at the start ^action pants")
	assert.True(t, ok)
	assert.Equal(t, "action", label)
}

func TestTagMatcher_ExactlyOneLabel(t *testing.T) {
	matcher, err := meetbot.NewTagMatcher(tagConfig("^", false))
	require.NoError(t, err)

	// Both action and info markers in one line: only one label comes back.
	label, ok := matcher.Match("^action do the thing ^info for context")
	assert.True(t, ok)
	assert.Equal(t, "action", label)
}

func TestTagMatcher_LongerLabelWinsOverPrefixLabel(t *testing.T) {
	// "info" cannot shadow "information" because of the word boundary.
	matcher, err := meetbot.NewTagMatcher(tagConfig("^", true,
		config.Tag{Label: "info", Symbol: "✏️"},
		config.Tag{Label: "information", Symbol: "📚"},
	))
	require.NoError(t, err)

	label, ok := matcher.Match("^information overload")
	assert.True(t, ok)
	assert.Equal(t, "information", label)

	label, ok = matcher.Match("^info item")
	assert.True(t, ok)
	assert.Equal(t, "info", label)
}

func TestTagMatcher_Idempotent(t *testing.T) {
	matcher, err := meetbot.NewTagMatcher(tagConfig("^", true))
	require.NoError(t, err)

	first, ok := matcher.Match("^action fix the bug")
	require.True(t, ok)
	second, ok := matcher.Match("^action fix the bug")
	require.True(t, ok)
	assert.Equal(t, first, second, "re-scanning an unchanged line must yield the same label")
}

func TestTagMatcher_Symbols(t *testing.T) {
	matcher, err := meetbot.NewTagMatcher(tagConfig("^", true))
	require.NoError(t, err)

	assert.Equal(t, "🚩", matcher.Symbol("action"))
	assert.Equal(t, "✏️", matcher.Symbol("info"))
	assert.Equal(t, "", matcher.Symbol("unknown"))
}

func TestTagMatcher_NoTagsConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Tags = nil
	matcher, err := meetbot.NewTagMatcher(cfg)
	require.NoError(t, err)

	_, ok := matcher.Match("^action pants")
	assert.False(t, ok)
}
