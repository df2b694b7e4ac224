package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"meetgogo/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 50, cfg.PowerLevel)
	assert.Equal(t, "null", cfg.Backend)
	assert.Equal(t, "^", cfg.TagsCommandPrefix)
	assert.True(t, cfg.TagsCommandAtStart)
	require.Len(t, cfg.Tags, 7)
	assert.Equal(t, config.Tag{Label: "action", Symbol: "🚩"}, cfg.Tags[0])
	assert.Equal(t, config.Tag{Label: "link", Symbol: "🔗"}, cfg.Tags[6])
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
powerlevel: 75
backend: discourse
backend_data:
  discourse:
    discourse_url: https://forum.example.org
    discourse_user: meetbot
    discourse_key: sekrit
    category_id: 12
tags_command_prefix: "!"
tags_command_at_start: false
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.PowerLevel)
	assert.Equal(t, "discourse", cfg.Backend)
	assert.Equal(t, "https://forum.example.org", cfg.BackendData.Discourse.URL)
	assert.Equal(t, "meetbot", cfg.BackendData.Discourse.User)
	assert.Equal(t, 12, cfg.BackendData.Discourse.CategoryID)
	assert.Equal(t, "!", cfg.TagsCommandPrefix)
	assert.False(t, cfg.TagsCommandAtStart)
	// Tags were not overridden, the defaults stay.
	assert.Len(t, cfg.Tags, 7)
}

// TestLoad_TagOrderPreserved matters because the first configured label wins
// when a line could match several.
func TestLoad_TagOrderPreserved(t *testing.T) {
	path := writeConfig(t, `
tags:
  zulu: "🦓"
  alpha: "🅰️"
  mike: "🎤"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Tags, 3)
	assert.Equal(t, "zulu", cfg.Tags[0].Label)
	assert.Equal(t, "alpha", cfg.Tags[1].Label)
	assert.Equal(t, "mike", cfg.Tags[2].Label)
	assert.Equal(t, "🎤", cfg.Tags[2].Symbol)
}

func TestLoad_BusSection(t *testing.T) {
	path := writeConfig(t, `
backend: bus
backend_data:
  bus:
    topic_prefix: minutes
    identity_url: http://identity:9000
    archive:
      root: /srv/minutes
      base_url: https://minutes.example.org
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bus", cfg.Backend)
	assert.Equal(t, "minutes", cfg.BackendData.Bus.TopicPrefix)
	assert.Equal(t, "http://identity:9000", cfg.BackendData.Bus.IdentityURL)
	assert.Equal(t, "/srv/minutes", cfg.BackendData.Bus.Archive.Root)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyPrefixFallsBack(t *testing.T) {
	path := writeConfig(t, `
tags_command_prefix: ""
backend: ""
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "^", cfg.TagsCommandPrefix)
	assert.Equal(t, "null", cfg.Backend)
}

func TestLoad_MalformedTags(t *testing.T) {
	path := writeConfig(t, `
tags:
  - action
  - info
`)

	_, err := config.Load(path)
	assert.Error(t, err)
}
