// Package config loads the bot configuration from a YAML file. The file
// mirrors the options the bot recognizes at runtime: the power level
// required for lifecycle commands, the backend selector with its nested
// per-backend settings, and the tag markers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tag is one configured semantic label with its reaction symbol.
type Tag struct {
	Label  string
	Symbol string
}

// TagSet is an ordered list of tags. Order matters: when a line could match
// more than one label, the first configured one wins.
type TagSet []Tag

// UnmarshalYAML decodes a YAML mapping while preserving key order, which a
// plain map[string]string would lose.
func (t *TagSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("tags: expected a mapping, got %v", node.Kind)
	}
	out := make(TagSet, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, Tag{
			Label:  node.Content[i].Value,
			Symbol: node.Content[i+1].Value,
		})
	}
	*t = out
	return nil
}

// ArchiveData configures the filesystem-archival backend.
type ArchiveData struct {
	// Root is the directory meeting documents are written under.
	Root string `yaml:"root"`
	// BaseURL is prepended to the relative document path to form the
	// externally reachable URL.
	BaseURL string `yaml:"base_url"`
}

// DiscourseData configures the forum-publishing backend.
type DiscourseData struct {
	URL        string `yaml:"discourse_url"`
	User       string `yaml:"discourse_user"`
	Key        string `yaml:"discourse_key"`
	CategoryID int    `yaml:"category_id"`
}

// BusData configures the event-bus publishing backend.
type BusData struct {
	// TopicPrefix prefixes the start/complete channel names,
	// e.g. "meetgogo" publishes to "meetgogo.meeting.start".
	TopicPrefix string `yaml:"topic_prefix"`
	// IdentityURL is the base URL of the identity lookup service. Empty
	// disables resolution and raw chat identifiers are published as-is.
	IdentityURL string `yaml:"identity_url"`
	// Archive lets the bus backend write documents so the complete message
	// can carry log URLs.
	Archive ArchiveData `yaml:"archive"`
}

// BackendData holds the per-variant nested settings. Only the section for
// the selected backend needs to be filled in.
type BackendData struct {
	Archive   ArchiveData   `yaml:"archive"`
	Discourse DiscourseData `yaml:"discourse"`
	Bus       BusData       `yaml:"bus"`
}

// Config is the full bot configuration.
type Config struct {
	// PowerLevel is the minimum room privilege level required to start or
	// end a meeting and to mutate topic or name.
	PowerLevel int `yaml:"powerlevel"`
	// Backend selects the publisher variant by registry name.
	Backend     string      `yaml:"backend"`
	BackendData BackendData `yaml:"backend_data"`
	// Tags maps label keywords to reaction symbols.
	Tags TagSet `yaml:"tags"`
	// TagsCommandPrefix is the marker character in front of a tag keyword.
	TagsCommandPrefix string `yaml:"tags_command_prefix"`
	// TagsCommandAtStart requires the marker to be the first token of the
	// line; when false the marker may appear anywhere.
	TagsCommandAtStart bool `yaml:"tags_command_at_start"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		PowerLevel: 50,
		Backend:    "null",
		Tags: TagSet{
			{Label: "action", Symbol: "🚩"},
			{Label: "info", Symbol: "✏️"},
			{Label: "agreed", Symbol: "👍"},
			{Label: "rejected", Symbol: "👎"},
			{Label: "idea", Symbol: "💭"},
			{Label: "halp", Symbol: "🛟"},
			{Label: "link", Symbol: "🔗"},
		},
		TagsCommandPrefix:  "^",
		TagsCommandAtStart: true,
	}
}

// Load reads and decodes the YAML file at path. Options missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.TagsCommandPrefix == "" {
		cfg.TagsCommandPrefix = "^"
	}
	if cfg.Backend == "" {
		cfg.Backend = "null"
	}
	return cfg, nil
}
