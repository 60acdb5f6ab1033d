package optimize

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	reportTimeLayout = "2006-01-02T15:04:05"
	reportFooter     = "\n---\n\n*Generated by aethermig optimize*\n"
)

var priorityMarks = map[Priority]string{
	PriorityHigh:   "🔴",
	PriorityMedium: "🟡",
	PriorityLow:    "🟢",
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// AnalysisMarkdown renders an analysis for the prompt file named name.
func AnalysisMarkdown(a *Analysis, name string) string {
	p := printer()
	var b strings.Builder

	p.Fprintf(&b, "# Prompt Optimization Analysis\n\n")
	p.Fprintf(&b, "**File:** `%s`\n", name)
	p.Fprintf(&b, "**Analyzed:** %s\n\n", a.Timestamp.Format(reportTimeLayout))

	s := a.OriginalStats
	p.Fprintf(&b, "## Current Statistics\n\n")
	p.Fprintf(&b, "- **Characters:** %d\n", s.Characters)
	p.Fprintf(&b, "- **Words:** %d\n", s.Words)
	p.Fprintf(&b, "- **Est. Tokens:** ~%d\n", s.EstimatedTokens)
	p.Fprintf(&b, "- **Lines:** %d\n", s.Lines)
	p.Fprintf(&b, "- **Sections:** %d\n\n", s.Sections)

	p.Fprintf(&b, "## Optimization Opportunities\n\n")
	p.Fprintf(&b, "**Total Potential Savings:** ~%d tokens\n\n", a.EstimatedSavings)
	for _, opp := range a.Opportunities {
		mark, ok := priorityMarks[opp.Priority]
		if !ok {
			mark = "⚪"
		}
		p.Fprintf(&b, "\n### %s %s\n", mark, opp.Description)
		p.Fprintf(&b, "- **Type:** %s\n", opp.Type)
		p.Fprintf(&b, "- **Priority:** %s\n", opp.Priority)
		p.Fprintf(&b, "- **Est. Savings:** ~%d tokens\n", opp.EstimatedSavings)
	}

	b.WriteString("\n## Recommendations\n\n")
	for _, rec := range a.Recommendations {
		b.WriteString("- " + rec + "\n")
	}

	b.WriteString(reportFooter)
	return b.String()
}

// ResultMarkdown renders an optimization result for the prompt file named
// name.
func ResultMarkdown(r *Result, name string) string {
	p := printer()
	var b strings.Builder

	p.Fprintf(&b, "# Prompt Optimization Report\n\n")
	p.Fprintf(&b, "**File:** `%s`\n", name)
	p.Fprintf(&b, "**Optimized:** %s\n\n", r.Timestamp.Format(reportTimeLayout))

	p.Fprintf(&b, "## Results\n\n")
	p.Fprintf(&b, "### Before Optimization\n")
	p.Fprintf(&b, "- **Words:** %d\n", r.OriginalStats.Words)
	p.Fprintf(&b, "- **Est. Tokens:** ~%d\n\n", r.OriginalStats.EstimatedTokens)
	p.Fprintf(&b, "### After Optimization\n")
	p.Fprintf(&b, "- **Words:** %d\n", r.OptimizedStats.Words)
	p.Fprintf(&b, "- **Est. Tokens:** ~%d\n\n", r.OptimizedStats.EstimatedTokens)

	target := "❌ No"
	if r.AchievedTarget {
		target = "✅ Yes"
	}
	quality := "⚠️ Review Needed"
	if r.QualityMaintained {
		quality = "✅ Yes"
	}
	p.Fprintf(&b, "### Savings\n")
	p.Fprintf(&b, "- **Token Reduction:** %d tokens\n", r.TokenReduction)
	p.Fprintf(&b, "- **Reduction:** %.1f%%\n", r.ReductionPercentage)
	p.Fprintf(&b, "- **Target Achieved:** %s\n", target)
	p.Fprintf(&b, "- **Quality Maintained:** %s\n\n", quality)

	b.WriteString("## Optimizations Applied\n\n")
	for _, opt := range r.OptimizationsApplied {
		b.WriteString("- ✅ " + opt + "\n")
	}

	b.WriteString(reportFooter)
	return b.String()
}
