package text

import (
	"context"
	"io"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// SimpleTextReplacer implements TextReplacer using literal substring replacement
type SimpleTextReplacer struct{}

var _ TextReplacer = (*SimpleTextReplacer)(nil)

// NewSimpleTextReplacer creates a new SimpleTextReplacer
func NewSimpleTextReplacer() *SimpleTextReplacer {
	return &SimpleTextReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *SimpleTextReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	return r.ReplaceString(string(originalContent), SortRules(rules)), nil
}

// ReplaceString applies rules in the given order. Matches are raw substrings,
// so a token embedded in a larger identifier is replaced too.
func (r *SimpleTextReplacer) ReplaceString(content string, rules []ReplacementRule) *ReplacementResult {
	result := &ReplacementResult{
		OriginalContent: []byte(content),
		ModifiedContent: []byte(content),
	}

	current := content
	for _, rule := range rules {
		if rule.FromText == "" {
			continue
		}

		n := strings.Count(current, rule.FromText)
		if n == 0 {
			continue
		}

		current = strings.ReplaceAll(current, rule.FromText, rule.ToText)
		result.ReplacementCount += n
		result.WasModified = true
	}

	result.ModifiedContent = []byte(current)
	return result
}

// ValidateRules implements TextReplacer.ValidateRules. Beyond shape checks it
// rejects any ToText that still contains a FromText, since a second pass over
// the output would then find more work.
func (r *SimpleTextReplacer) ValidateRules(rules []ReplacementRule) error {
	seen := make(map[string]int, len(rules))
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: from_text is required", i)
		}
		if j, ok := seen[rule.FromText]; ok {
			return errors.Errorf("rule %d: from_text %q already defined by rule %d", i, rule.FromText, j)
		}
		seen[rule.FromText] = i
	}
	for i, rule := range rules {
		for j, other := range rules {
			if strings.Contains(rule.ToText, other.FromText) {
				return errors.Errorf("rule %d: to_text %q reintroduces from_text %q of rule %d", i, rule.ToText, other.FromText, j)
			}
		}
	}
	return nil
}

// SortRules returns a copy of rules ordered longest FromText first. If one
// token is a substring of another, the longer one must be consumed before the
// shorter one can corrupt it.
func SortRules(rules []ReplacementRule) []ReplacementRule {
	out := make([]ReplacementRule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].FromText) > len(out[j].FromText)
	})
	return out
}
