package text

import (
	"context"
	"io"

	"github.com/walteh/aethermig/pkg/tokenmap"
)

// Rewriter rewrites legacy identifiers to their canonical form.
type Rewriter struct {
	tokens   *tokenmap.Map
	rules    []ReplacementRule
	replacer *SimpleTextReplacer
}

// NewRewriter builds a Rewriter over a token map.
func NewRewriter(tokens *tokenmap.Map) *Rewriter {
	return &Rewriter{
		tokens:   tokens,
		rules:    RulesFromMap(tokens),
		replacer: NewSimpleTextReplacer(),
	}
}

// RulesFromMap turns a token map into replacement rules, longest token first.
func RulesFromMap(tokens *tokenmap.Map) []ReplacementRule {
	legacy := tokens.Tokens()
	rules := make([]ReplacementRule, 0, len(legacy))
	for _, tok := range legacy {
		canonical, _ := tokens.Lookup(tok)
		rules = append(rules, ReplacementRule{FromText: tok, ToText: canonical})
	}
	return rules
}

// Contains reports whether content holds any legacy identifier.
func (w *Rewriter) Contains(content string) bool {
	return w.tokens.ContainsLegacy(content)
}

// Rewrite replaces every legacy identifier in content. Content without any
// legacy identifier comes back unchanged with a zero count.
func (w *Rewriter) Rewrite(content string) *ReplacementResult {
	if !w.Contains(content) {
		return &ReplacementResult{
			OriginalContent: []byte(content),
			ModifiedContent: []byte(content),
		}
	}
	return w.replacer.ReplaceString(content, w.rules)
}

// RewriteReader reads all of content and rewrites it like Rewrite does.
func (w *Rewriter) RewriteReader(ctx context.Context, content io.Reader) (*ReplacementResult, error) {
	return w.replacer.ReplaceText(ctx, content, w.rules)
}
