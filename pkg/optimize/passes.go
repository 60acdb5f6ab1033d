package optimize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type phraseRewrite struct {
	source      string
	re          *regexp.Regexp
	replacement string
}

func newPhraseRewrite(source, replacement string) phraseRewrite {
	return phraseRewrite{source: source, re: regexp.MustCompile(`(?i)` + source), replacement: replacement}
}

var phraseRewrites = []phraseRewrite{
	newPhraseRewrite(`it is important to note that\s+`, ""),
	newPhraseRewrite(`please note that\s+`, ""),
	newPhraseRewrite(`it should be noted that\s+`, ""),
	newPhraseRewrite(`as mentioned (above|before|previously),?\s+`, ""),
	newPhraseRewrite(`in order to\s+`, "to "),
	newPhraseRewrite(`for the purpose of\s+`, "to "),
	newPhraseRewrite(`due to the fact that\s+`, "because "),
	newPhraseRewrite(`at this point in time\s+`, "now "),
	newPhraseRewrite(`has the ability to\s+`, "can "),
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (o *Optimizer) removeRedundancy(prompt string) string {
	for _, p := range phraseRewrites {
		before := wordCount(prompt)
		prompt = p.re.ReplaceAllLiteralString(prompt, p.replacement)
		if wordCount(prompt) != before {
			o.record("Removed redundant phrase pattern: %s...", truncate(p.source, 30))
		}
	}
	return prompt
}

var (
	sentenceBreak = regexp.MustCompile(`[.!?]+\s+`)
	intensifiers  = regexp.MustCompile(`\b(very|really|quite|rather|fairly|pretty)\s+`)
	hedges        = regexp.MustCompile(`\b(basically|essentially|actually|literally)\s+`)
)

// simplifyVerbosity drops filler words from long sentences only.
func (o *Optimizer) simplifyVerbosity(prompt string) string {
	var b strings.Builder
	start := 0
	emit := func(sentence, delim string) {
		if n := wordCount(sentence); n > longSentenceWords {
			simplified := intensifiers.ReplaceAllString(sentence, "")
			simplified = hedges.ReplaceAllString(simplified, "")
			if m := wordCount(simplified); m < n {
				o.record("Simplified verbose sentence (reduced by %d words)", n-m)
			}
			sentence = simplified
		}
		b.WriteString(sentence)
		b.WriteString(delim)
	}
	for _, loc := range sentenceBreak.FindAllStringIndex(prompt, -1) {
		emit(prompt[start:loc[0]], prompt[loc[0]:loc[1]])
		start = loc[1]
	}
	emit(prompt[start:], "")
	return b.String()
}

// mergeSections folds sections with similar headings into the first of them.
// Example sections are never merged.
func (o *Optimizer) mergeSections(prompt string) string {
	preamble, sections := parseSections(prompt)
	if len(sections) == 0 {
		return prompt
	}

	type group struct {
		heading    string
		normalized string
		tokens     map[string]struct{}
		contents   []string
		merged     []string
	}

	var groups []*group
	changed := false
	for _, s := range sections {
		normalized, tokens := headingSignature(s.heading)

		var target *group
		if !strings.Contains(normalized, "example") {
			for _, g := range groups {
				if similarHeadings(tokens, g.tokens) || (normalized != "" && normalized == g.normalized) {
					target = g
					break
				}
			}
		}

		if target == nil {
			groups = append(groups, &group{
				heading:    s.heading,
				normalized: normalized,
				tokens:     tokens,
				contents:   []string{s.content},
			})
			continue
		}

		for t := range tokens {
			target.tokens[t] = struct{}{}
		}
		changed = true
		if block := normalizeBlock(s.content); block != "" && !containsBlock(target.contents, block) {
			target.contents = append(target.contents, s.content)
		}
		target.merged = append(target.merged, s.heading)
	}

	if !changed {
		return prompt
	}

	final := make([]section, 0, len(groups))
	var summaries []string
	for _, g := range groups {
		final = append(final, section{heading: g.heading, content: combineContents(g.contents)})
		if len(g.merged) == 0 {
			continue
		}
		titles := make([]string, 0, len(g.merged))
		for _, h := range g.merged {
			titles = append(titles, headingTitle(h))
		}
		summaries = append(summaries, headingTitle(g.heading)+" (merged: "+strings.Join(titles, ", ")+")")
	}

	rebuilt := rebuild(preamble, final)
	if rebuilt == prompt {
		return prompt
	}
	if len(summaries) > 0 {
		o.record("Merged sections: %s", strings.Join(summaries, "; "))
	}
	return rebuilt
}

func similarHeadings(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	shared := 0
	for t := range a {
		if _, ok := b[t]; ok {
			shared++
		}
	}
	return shared == len(a) || shared == len(b) || shared >= 2
}

func containsBlock(contents []string, block string) bool {
	for _, c := range contents {
		if normalizeBlock(c) == block {
			return true
		}
	}
	return false
}

var exampleHeading = regexp.MustCompile(`(?i)example`)

// consolidateExamples keeps the first two and the last example section when
// there are more than maxExamples.
func (o *Optimizer) consolidateExamples(prompt string) string {
	preamble, sections := parseSections(prompt)
	if len(sections) == 0 {
		return prompt
	}

	var examples []int
	for i, s := range sections {
		if exampleHeading.MatchString(s.heading) {
			examples = append(examples, i)
		}
	}
	if len(examples) <= maxExamples {
		return prompt
	}

	keep := map[int]bool{examples[0]: true, examples[1]: true, examples[len(examples)-1]: true}
	isExample := map[int]bool{}
	for _, i := range examples {
		isExample[i] = true
	}

	var removed []string
	filtered := make([]section, 0, len(sections))
	for i, s := range sections {
		if isExample[i] && !keep[i] {
			removed = append(removed, headingTitle(s.heading))
			continue
		}
		filtered = append(filtered, s)
	}

	rebuilt := rebuild(preamble, filtered)
	if rebuilt == prompt {
		return prompt
	}

	shown := strings.Join(removed[:min(len(removed), 3)], ", ")
	if len(removed) > 3 {
		shown += ", ..."
	}
	msg := fmt.Sprintf("Consolidated examples: kept %d of %d", len(keep), len(examples))
	if shown != "" {
		msg += " (removed " + shown + ")"
	}
	o.record("%s", msg)
	return rebuilt
}

var (
	ellipsisRun = regexp.MustCompile(`\.\.\.+`)
	bangRun     = regexp.MustCompile(`!!!+`)
	queryRun    = regexp.MustCompile(`\?\?\?+`)
)

func (o *Optimizer) cleanFormatting(prompt string) string {
	out := blankRun.ReplaceAllLiteralString(prompt, "\n\n")
	out = ellipsisRun.ReplaceAllLiteralString(out, "...")
	out = bangRun.ReplaceAllLiteralString(out, "!")
	out = queryRun.ReplaceAllLiteralString(out, "?")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	out = strings.Join(lines, "\n")

	before, after := utf8.RuneCountInString(prompt), utf8.RuneCountInString(out)
	if after < before {
		o.record("Cleaned formatting (saved %d characters)", before-after)
	}
	return out
}

var paddedHeading = regexp.MustCompile(`##\s+(.+?)\s*\n`)

// aggressiveTrim keeps only the first example block and tightens heading
// whitespace.
func (o *Optimizer) aggressiveTrim(prompt string) string {
	if blocks := exampleBlocks(prompt); len(blocks) > 1 {
		for _, b := range blocks[1:] {
			prompt = strings.ReplaceAll(prompt, b, "")
		}
		o.record("Aggressively reduced examples to 1")
	}

	prompt = paddedHeading.ReplaceAllString(prompt, "## ${1}\n")
	o.record("Applied aggressive optimization")
	return prompt
}
