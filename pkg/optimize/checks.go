package optimize

import (
	"regexp"
	"strings"
)

// check estimates the tokens one kind of rewrite would save.
type check struct {
	kind        string
	description string
	priority    Priority
	estimate    func(prompt string) int
}

// checks run in report order.
var checks = []check{
	{TypeRedundancy, "Remove redundant phrases and repetitive content", PriorityHigh, redundancySavings},
	{TypeVerbosity, "Simplify verbose explanations", PriorityMedium, verbositySavings},
	{TypeSectionMerge, "Merge similar or overlapping sections", PriorityHigh, mergeSavings},
	{TypeExamples, "Consolidate or reduce redundant examples", PriorityMedium, exampleSavings},
	{TypeFormatting, "Remove excessive formatting and whitespace", PriorityLow, formattingSavings},
	{TypeLanguage, "Simplify complex language patterns", PriorityMedium, languageSavings},
}

type weightedPattern struct {
	re      *regexp.Regexp
	savings int
}

var redundantPhrases = []weightedPattern{
	{regexp.MustCompile(`(?i)it is important to note that`), 50},
	{regexp.MustCompile(`(?i)please note that`), 30},
	{regexp.MustCompile(`(?i)it should be noted`), 30},
	{regexp.MustCompile(`(?i)as mentioned (above|before|previously)`), 40},
	{regexp.MustCompile(`(?i)in order to`), 20},
	{regexp.MustCompile(`(?i)for the purpose of`), 30},
	{regexp.MustCompile(`(?i)due to the fact that`), 40},
	{regexp.MustCompile(`(?i)at this point in time`), 40},
}

func redundancySavings(prompt string) int {
	total := 0
	for _, p := range redundantPhrases {
		total += len(p.re.FindAllStringIndex(prompt, -1)) * p.savings
	}
	return total
}

// longSentenceWords is the length past which a sentence counts as verbose.
const longSentenceWords = 40

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

func verbositySavings(prompt string) int {
	words := 0
	for _, s := range sentenceEnd.Split(prompt, -1) {
		if n := len(strings.Fields(s)); n > longSentenceWords {
			words += n
		}
	}
	return int(float64(words) * 0.2 * 0.75)
}

var level2Title = regexp.MustCompile(`##\s+([^\n]+)`)

func mergeSavings(prompt string) int {
	var titles []map[string]struct{}
	for _, m := range level2Title.FindAllStringSubmatch(prompt, -1) {
		set := map[string]struct{}{}
		for _, w := range strings.Fields(strings.ToLower(m[1])) {
			set[w] = struct{}{}
		}
		titles = append(titles, set)
	}

	pairs := 0
	for i := range titles {
		for j := i + 1; j < len(titles); j++ {
			shared := 0
			for w := range titles[i] {
				if _, ok := titles[j][w]; ok {
					shared++
				}
			}
			if shared >= 2 {
				pairs++
			}
		}
	}
	return pairs * 100
}

// maxExamples is how many example sections a prompt may keep.
const maxExamples = 3

var exampleBlock = regexp.MustCompile(`(?i)##?\s*Example[^#]*`)

// exampleBlocks finds example sections that run to the next "##" heading or
// the end of the text.
func exampleBlocks(prompt string) []string {
	var blocks []string
	for _, loc := range exampleBlock.FindAllStringIndex(prompt, -1) {
		end := loc[1]
		if end == len(prompt) || strings.HasPrefix(prompt[end:], "##") {
			blocks = append(blocks, prompt[loc[0]:end])
		}
	}
	return blocks
}

func exampleSavings(prompt string) int {
	blocks := exampleBlocks(prompt)
	if len(blocks) <= maxExamples {
		return 0
	}
	words := 0
	for _, b := range blocks {
		words += len(strings.Fields(b))
	}
	avg := float64(words) / float64(len(blocks))
	return int(float64(len(blocks)-maxExamples) * avg * 0.75)
}

var (
	blankRun    = regexp.MustCompile(`\n\n\n+`)
	repeatPunct = regexp.MustCompile(`\.\.\.+|!!!+|\?\?\?+`)
)

func formattingSavings(prompt string) int {
	return len(blankRun.FindAllStringIndex(prompt, -1))*5 +
		len(repeatPunct.FindAllStringIndex(prompt, -1))*3
}

var complexWords = regexp.MustCompile(`(?i)\b(utilize|facilitate|implement|leverage|paradigm)\b`)

func languageSavings(prompt string) int {
	return len(complexWords.FindAllStringIndex(prompt, -1)) * 5
}
