/*
Package status aggregates the counters of a migration run and renders the
final report.

🎯 Purpose:
- One Stats value per run, never shared between runs
- Summary block with the four counters
- Outcome that separates a no-op verification run from a mutating run

🔍 Example:

	stats := status.NewStats(false)
	stats.RecordUpdate(2)
	stats.RecordRename(false, 1)
	block, _ := status.FormatSummary(stats)
	fmt.Print(block)
	fmt.Println(status.OutcomeMessage(stats))
*/
package status
