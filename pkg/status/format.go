package status

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

const ruleWidth = 49

// FormatSummary renders the final summary block.
func FormatSummary(s *Stats) (string, error) {
	title := "Migration Complete"
	if s.DryRun {
		title = "Dry Run Complete"
	}

	data := pterm.TableData{
		{"Files updated:", fmt.Sprint(s.FilesUpdated)},
		{"Files renamed:", fmt.Sprint(s.FilesRenamed)},
		{"Directories renamed:", fmt.Sprint(s.DirectoriesRenamed)},
		{"Total replacements:", fmt.Sprint(s.TotalReplacements)},
	}
	if s.Warnings > 0 {
		data = append(data, []string{"Warnings:", fmt.Sprint(s.Warnings)})
	}
	if s.Errors > 0 {
		data = append(data, []string{"Errors:", fmt.Sprint(s.Errors)})
	}

	table, err := pterm.DefaultTable.WithData(data).WithSeparator("  ").Srender()
	if err != nil {
		return "", errors.Errorf("rendering summary table: %w", err)
	}

	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(strings.TrimRight(table, "\n") + "\n")
	b.WriteString(rule + "\n\n")
	return b.String(), nil
}

// OutcomeMessage is the single terminal line of a run.
func OutcomeMessage(s *Stats) string {
	switch {
	case s.Outcome() == OutcomeNothingToDo:
		return "No legacy identifiers found. Repository is up to date."
	case s.DryRun:
		return "Dry run found pending changes. Run without --dry-run to apply them."
	default:
		return "Migration completed successfully."
	}
}
