package optimize

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Opportunity types
const (
	TypeRedundancy   = "redundancy"
	TypeVerbosity    = "verbosity"
	TypeSectionMerge = "section_merge"
	TypeExamples     = "examples"
	TypeFormatting   = "formatting"
	TypeLanguage     = "language"
)

// Priority ranks an opportunity.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// WellOptimized is the sole recommendation when nothing can be saved.
const WellOptimized = "Prompt is already well-optimized"

const maxRecommendations = 5

// Stats describes a prompt's size.
type Stats struct {
	Characters      int `json:"characters"`
	Words           int `json:"words"`
	EstimatedTokens int `json:"estimated_tokens"`
	Lines           int `json:"lines"`
	Sections        int `json:"sections"`
}

// Opportunity is one kind of saving found by Analyze.
type Opportunity struct {
	Type             string   `json:"type"`
	Description      string   `json:"description"`
	EstimatedSavings int      `json:"estimated_savings"`
	Priority         Priority `json:"priority"`
}

// Analysis is the result of Analyze.
type Analysis struct {
	Timestamp        time.Time     `json:"timestamp"`
	OriginalStats    Stats         `json:"original_stats"`
	Opportunities    []Opportunity `json:"opportunities"`
	EstimatedSavings int           `json:"estimated_savings"`
	Recommendations  []string      `json:"recommendations"`
}

// Result is the report of Optimize.
type Result struct {
	Timestamp            time.Time `json:"timestamp"`
	OriginalStats        Stats     `json:"original_stats"`
	OptimizedStats       Stats     `json:"optimized_stats"`
	TargetTokens         int       `json:"target_tokens"`
	OptimizationsApplied []string  `json:"optimizations_applied"`
	QualityMaintained    bool      `json:"quality_maintained"`
	AchievedTarget       bool      `json:"achieved_target"`
	TokenReduction       int       `json:"token_reduction"`
	ReductionPercentage  float64   `json:"reduction_percentage"`
}

// Optimizer analyzes and trims prompts. It records the passes that changed
// the text, so one Optimizer must not run Optimize concurrently.
type Optimizer struct {
	aggressive bool
	now        func() time.Time
	applied    []string
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithAggressive enables the aggressive pass.
func WithAggressive() Option {
	return func(o *Optimizer) { o.aggressive = true }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Optimizer) { o.now = now }
}

// New creates an Optimizer.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var sectionMarker = regexp.MustCompile(`##?\s+`)

// estimateTokens converts a word count to estimated tokens.
func estimateTokens(words int) int {
	return int(float64(words) * 0.75)
}

// StatsOf measures text.
func StatsOf(text string) Stats {
	words := len(strings.Fields(text))
	return Stats{
		Characters:      utf8.RuneCountInString(text),
		Words:           words,
		EstimatedTokens: estimateTokens(words),
		Lines:           strings.Count(text, "\n") + 1,
		Sections:        len(sectionMarker.FindAllStringIndex(text, -1)),
	}
}

// Analyze reports where prompt could be shortened without changing it.
func (o *Optimizer) Analyze(prompt string) *Analysis {
	a := &Analysis{
		Timestamp:     o.now(),
		OriginalStats: StatsOf(prompt),
		Opportunities: []Opportunity{},
	}

	for _, c := range checks {
		savings := c.estimate(prompt)
		if savings <= 0 {
			continue
		}
		a.Opportunities = append(a.Opportunities, Opportunity{
			Type:             c.kind,
			Description:      c.description,
			EstimatedSavings: savings,
			Priority:         c.priority,
		})
		a.EstimatedSavings += savings
	}

	a.Recommendations = recommendations(a)
	return a
}

// TopOpportunities returns up to n opportunities, largest saving first.
func (a *Analysis) TopOpportunities(n int) []Opportunity {
	sorted := slices.Clone(a.Opportunities)
	slices.SortStableFunc(sorted, func(x, y Opportunity) int {
		return cmp.Compare(y.EstimatedSavings, x.EstimatedSavings)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func recommendations(a *Analysis) []string {
	var recs []string
	for _, opp := range a.TopOpportunities(maxRecommendations) {
		recs = append(recs, fmt.Sprintf("%s (save ~%d tokens)", opp.Description, opp.EstimatedSavings))
	}
	if a.EstimatedSavings > 0 {
		recs = append(recs, fmt.Sprintf("\nTotal potential savings: ~%d tokens (%.0f words)",
			a.EstimatedSavings, float64(a.EstimatedSavings)*1.33))
	} else {
		recs = append(recs, WellOptimized)
	}
	return recs
}

// Optimize rewrites prompt. A targetTokens of zero or less aims for a 20%
// reduction of the estimated token count.
func (o *Optimizer) Optimize(prompt string, targetTokens int) (string, *Result) {
	originalWords := len(strings.Fields(prompt))
	if targetTokens <= 0 {
		targetTokens = int(float64(originalWords) * 0.75 * 0.8)
	}

	o.applied = []string{}
	optimized := o.removeRedundancy(prompt)
	optimized = o.simplifyVerbosity(optimized)
	optimized = o.mergeSections(optimized)
	optimized = o.consolidateExamples(optimized)
	optimized = o.cleanFormatting(optimized)
	if o.aggressive {
		optimized = o.aggressiveTrim(optimized)
	}

	optimizedWords := len(strings.Fields(optimized))
	r := &Result{
		Timestamp:            o.now(),
		OriginalStats:        StatsOf(prompt),
		OptimizedStats:       StatsOf(optimized),
		TargetTokens:         targetTokens,
		OptimizationsApplied: o.applied,
		QualityMaintained:    qualityMaintained(prompt, optimized),
		AchievedTarget:       float64(optimizedWords)*0.75 <= float64(targetTokens),
	}

	originalTokens := estimateTokens(originalWords)
	r.TokenReduction = originalTokens - estimateTokens(optimizedWords)
	if originalTokens > 0 {
		r.ReductionPercentage = float64(r.TokenReduction) / float64(originalTokens) * 100
	}

	return optimized, r
}

func (o *Optimizer) record(format string, args ...any) {
	o.applied = append(o.applied, fmt.Sprintf(format, args...))
}

// keySections must survive optimization, allowing one loss.
var keySections = []string{"role", "mission", "workflow", "example"}

func qualityMaintained(original, optimized string) bool {
	count := func(text string) int {
		text = strings.ToLower(text)
		n := 0
		for _, s := range keySections {
			if strings.Contains(text, s) {
				n++
			}
		}
		return n
	}
	return count(optimized) >= count(original)-1
}
