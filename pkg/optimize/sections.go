package optimize

import (
	"regexp"
	"strings"
)

// section is a Markdown heading line and the text up to the next heading.
type section struct {
	heading string
	content string
}

var headingLine = regexp.MustCompile(`(?m)^#+\s+[^\n]+`)

// parseSections splits text into the part before the first heading and the
// sections that follow. rebuild reverses it exactly.
func parseSections(text string) (string, []section) {
	locs := headingLine.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	sections := make([]section, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, section{heading: text[loc[0]:loc[1]], content: text[loc[1]:end]})
	}
	return text[:locs[0][0]], sections
}

func rebuild(preamble string, sections []section) string {
	var b strings.Builder
	b.WriteString(preamble)
	for _, s := range sections {
		b.WriteString(s.heading)
		b.WriteString(s.content)
	}
	return b.String()
}

var (
	headingMarks   = regexp.MustCompile(`^#+\s*`)
	parenthetical  = regexp.MustCompile(`\(.*?\)`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

var headingStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {},
	"on": {}, "by": {}, "from": {}, "your": {}, "our": {}, "this": {}, "that": {},
}

func headingTitle(heading string) string {
	return strings.TrimSpace(headingMarks.ReplaceAllString(heading, ""))
}

// headingSignature normalizes a heading and reduces it to stemmed content
// words, so "Goals" and "Goal Overview" share the token "goal".
func headingSignature(heading string) (string, map[string]struct{}) {
	title := parenthetical.ReplaceAllString(headingTitle(heading), "")
	normalized := nonAlnum.ReplaceAllString(strings.ToLower(title), " ")
	normalized = strings.TrimSpace(whitespaceRuns.ReplaceAllString(normalized, " "))
	if normalized == "" {
		return "", map[string]struct{}{}
	}

	tokens := map[string]struct{}{}
	for _, tok := range strings.Fields(normalized) {
		if _, stop := headingStopWords[tok]; stop {
			continue
		}
		switch {
		case strings.HasSuffix(tok, "ies") && len(tok) > 3:
			tok = strings.TrimSuffix(tok, "ies") + "y"
		case strings.HasSuffix(tok, "ing") && len(tok) > 5:
			tok = strings.TrimSuffix(tok, "ing")
		case strings.HasSuffix(tok, "s") && len(tok) > 3:
			tok = strings.TrimSuffix(tok, "s")
		}
		tokens[tok] = struct{}{}
	}
	if len(tokens) == 0 {
		tokens[normalized] = struct{}{}
	}
	return normalized, tokens
}

// normalizeBlock reduces content to its non-blank trimmed lines, lowercased,
// for duplicate detection.
func normalizeBlock(block string) string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.ToLower(strings.Join(lines, "\n"))
}

// combineContents joins the blocks of merged sections with one blank line.
func combineContents(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}
	combined := blocks[0]
	for _, block := range blocks[1:] {
		if normalizeBlock(block) == "" {
			continue
		}
		combined = strings.TrimRight(combined, "\n") + "\n\n" + strings.Trim(block, "\n")
		if strings.HasSuffix(block, "\n") {
			combined += "\n"
		}
	}
	return combined
}
