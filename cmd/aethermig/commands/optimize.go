package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/cmd/aethermig/opts"
	"github.com/walteh/aethermig/pkg/optimize"
)

// ErrNoOutput is returned when optimize would rewrite a prompt with nowhere
// to put it.
var ErrNoOutput = errors.Base("--output is required unless --analyze-only is set")

const topOpportunities = 3

type optimizeFlags struct {
	analyzeOnly  bool
	aggressive   bool
	targetTokens int
	output       string
	report       string
}

// NewOptimizeCmd creates the optimize command
func NewOptimizeCmd(o *opts.RootOpts) *cobra.Command {
	var f optimizeFlags

	cmd := &cobra.Command{
		Use:   "optimize <prompt-file>",
		Short: "Analyze or trim the token cost of a prompt file",
		Long: `Optimize estimates the tokens a Markdown prompt spends and where it could
save them. With --analyze-only it writes <name>-analysis.md next to the
prompt. Otherwise it writes the trimmed prompt to --output and a
<output>-optimization-report.md beside it. --report adds a JSON copy of
either result. With --dry-run nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !f.analyzeOnly && f.output == "" {
				return errors.WithStack(ErrNoOutput)
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Errorf("reading prompt: %w", err)
			}

			zlog := zerolog.Ctx(cmd.Context()).With().Str("command", "optimize").Str("prompt", path).Logger()
			o.Logger.Infof("📝 Loading prompt: %s", filepath.Base(path))

			var optOpts []optimize.Option
			if f.aggressive {
				optOpts = append(optOpts, optimize.WithAggressive())
			}
			optimizer := optimize.New(optOpts...)

			if f.analyzeOnly {
				o.Logger.Info("🔍 Analyzing prompt...")
				analysis := optimizer.Analyze(string(data))
				zlog.Debug().Int("savings", analysis.EstimatedSavings).Int("opportunities", len(analysis.Opportunities)).Msg("analysis done")
				printAnalysis(o, analysis)

				reportPath := siblingPath(path, "-analysis.md")
				return writeReports(o, f.report, analysis, reportPath, optimize.AnalysisMarkdown(analysis, filepath.Base(path)), "📋 Analysis Report")
			}

			o.Logger.Info("🔧 Optimizing prompt...")
			if f.aggressive {
				o.Logger.Warning("Aggressive mode enabled")
			}
			optimized, result := optimizer.Optimize(string(data), f.targetTokens)
			zlog.Debug().Int("reduction", result.TokenReduction).Strs("applied", result.OptimizationsApplied).Msg("optimization done")
			printResult(o, result)

			if o.DryRun {
				o.Logger.Info("Dry run: nothing written")
				return nil
			}
			if err := os.WriteFile(f.output, []byte(optimized), 0o644); err != nil {
				return errors.Errorf("writing optimized prompt: %w", err)
			}
			o.Logger.LogNewline()
			o.Logger.Infof("📁 Optimized prompt: %s", f.output)

			reportPath := siblingPath(f.output, "-optimization-report.md")
			if err := writeReports(o, f.report, result, reportPath, optimize.ResultMarkdown(result, filepath.Base(path)), "📋 Optimization Report"); err != nil {
				return err
			}
			o.Logger.LogNewline()
			o.Logger.Success("Optimization successful!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.analyzeOnly, "analyze-only", false, "only report opportunities, do not rewrite")
	cmd.Flags().BoolVar(&f.aggressive, "aggressive", false, "keep one example and tighten headings")
	cmd.Flags().IntVar(&f.targetTokens, "target-tokens", 0, "target token count (default: 20% below the estimate)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "file for the optimized prompt")
	cmd.Flags().StringVar(&f.report, "report", "", "also write the result as JSON to this file")

	return cmd
}

func printAnalysis(o *opts.RootOpts, a *optimize.Analysis) {
	o.Logger.LogNewline()
	o.Logger.Banner("📊 Analysis Results")
	o.Logger.Infof("Original: ~%d tokens", a.OriginalStats.EstimatedTokens)
	o.Logger.Infof("Potential Savings: ~%d tokens", a.EstimatedSavings)
	o.Logger.LogNewline()
	o.Logger.Info("Top Opportunities:")
	for _, opp := range a.TopOpportunities(topOpportunities) {
		o.Logger.Infof("  - %s: ~%d tokens", opp.Description, opp.EstimatedSavings)
	}
}

func printResult(o *opts.RootOpts, r *optimize.Result) {
	o.Logger.LogNewline()
	o.Logger.Banner("✅ Optimization Complete")
	o.Logger.Infof("Original: ~%d tokens", r.OriginalStats.EstimatedTokens)
	o.Logger.Infof("Optimized: ~%d tokens", r.OptimizedStats.EstimatedTokens)
	o.Logger.Infof("Savings: %d tokens (%.1f%%)", r.TokenReduction, r.ReductionPercentage)
	if r.QualityMaintained {
		o.Logger.Info("Quality: ✅ Maintained")
	} else {
		o.Logger.Warning("Quality: review needed")
	}
}

// writeReports writes the Markdown report and, when jsonPath is set, the JSON
// form of v. Nothing is written in a dry run.
func writeReports(o *opts.RootOpts, jsonPath string, v any, mdPath, markdown, label string) error {
	if o.DryRun {
		o.Logger.Info("Dry run: nothing written")
		return nil
	}

	if jsonPath != "" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Errorf("encoding JSON report: %w", err)
		}
		if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
			return errors.Errorf("writing JSON report: %w", err)
		}
		o.Logger.Infof("📊 JSON Report: %s", jsonPath)
	}

	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return errors.Errorf("writing report: %w", err)
	}
	o.Logger.Infof("%s: %s", label, mdPath)
	return nil
}

// siblingPath replaces path's extension with suffix.
func siblingPath(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
