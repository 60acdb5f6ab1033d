/*
Package optimize estimates and trims the token cost of Markdown prompt files.

🎯 Purpose:
- Analyze counts words and estimated tokens and lists what could be saved
- Optimize applies the text passes in priority order and reports what changed
- Markdown renderers for both results

Token counts are estimates: three quarters of the whitespace separated word
count, truncated.

🔄 Optimize pass order:

	┌──────────────┐   ┌────────────┐   ┌────────────────┐
	│ redundancy   │──▶│ verbosity  │──▶│ section merge  │
	└──────────────┘   └────────────┘   └────────────────┘
	                                           │
	┌──────────────┐   ┌────────────┐   ┌──────▼─────────┐
	│ aggressive*  │◀──│ formatting │◀──│ examples       │
	└──────────────┘   └────────────┘   └────────────────┘
	  * only with WithAggressive

🔍 Example:

	o := optimize.New()
	analysis := o.Analyze(prompt)
	fmt.Print(optimize.AnalysisMarkdown(analysis, "prompt.md"))

	trimmed, result := optimize.New(optimize.WithAggressive()).Optimize(prompt, 0)
*/
package optimize
