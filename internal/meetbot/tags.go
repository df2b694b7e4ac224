package meetbot

import (
	"fmt"
	"regexp"
	"strings"

	"meetgogo/backend/internal/config"
)

// TagMatcher scans lines for tag markers. All configured labels are compiled
// into a single alternation so one pass yields at most one label; when a
// line could textually match several labels, the first configured one wins.
type TagMatcher struct {
	re      *regexp.Regexp
	symbols map[string]string
}

// NewTagMatcher compiles the tag pattern from configuration. The pattern is
// compiled once at startup and treated as immutable afterwards.
func NewTagMatcher(cfg *config.Config) (*TagMatcher, error) {
	if len(cfg.Tags) == 0 {
		return &TagMatcher{symbols: map[string]string{}}, nil
	}

	alts := make([]string, 0, len(cfg.Tags))
	symbols := make(map[string]string, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		alts = append(alts, regexp.QuoteMeta(tag.Label))
		symbols[tag.Label] = tag.Symbol
	}

	var pattern string
	if cfg.TagsCommandAtStart {
		pattern = `^\s*` + regexp.QuoteMeta(cfg.TagsCommandPrefix) + `(` + strings.Join(alts, "|") + `)\b`
	} else {
		pattern = regexp.QuoteMeta(cfg.TagsCommandPrefix) + `(` + strings.Join(alts, "|") + `)\b`
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile tag pattern: %w", err)
	}
	return &TagMatcher{re: re, symbols: symbols}, nil
}

// Match returns the label the line is tagged with, if any. The line itself
// is never modified; logging stores the raw text.
func (t *TagMatcher) Match(line string) (string, bool) {
	if t.re == nil {
		return "", false
	}
	m := t.re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Symbol returns the reaction symbol configured for a label.
func (t *TagMatcher) Symbol(label string) string {
	return t.symbols[label]
}
