package commands

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/cmd/aethermig/opts"
	"github.com/walteh/aethermig/pkg/bridge"
)

// CredentialEnv holds the Gemini API key read by ask.
const CredentialEnv = "GEMINI_API_KEY"

var (
	ErrNoQuery       = errors.Base("no query provided")
	ErrRequestFailed = errors.Base("gemini request failed")
)

type askFlags struct {
	model       string
	taskType    string
	depth       string
	attempts    int
	maxTokens   int
	temperature float32
}

// NewAskCmd creates the ask command
func NewAskCmd(o *opts.RootOpts) *cobra.Command {
	var f askFlags

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Send a query to Gemini through the bridge",
		Long: `Ask wraps the query in the system instruction for its task type, sends it
to Gemini and prints the bridge response as JSON. The API key is read from
the ` + CredentialEnv + ` environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.WithStack(ErrNoQuery)
			}

			taskCtx := &bridge.Context{TaskType: f.taskType, Attempts: f.attempts, Depth: f.depth}
			req := bridge.Request{
				Credential: os.Getenv(CredentialEnv),
				Prompt:     bridge.BuildPrompt(query, taskCtx),
				Model:      f.model,
				MaxTokens:  f.maxTokens,
				Context:    taskCtx,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &f.temperature
			}

			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "ask").Logger().WithContext(cmd.Context())
			resp := bridge.New(o.Generators).Invoke(ctx, req)

			enc := json.NewEncoder(o.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return errors.Errorf("encoding response: %w", err)
			}

			if !resp.OK() {
				return errors.Errorf("%s: %w", resp.Error, ErrRequestFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.model, "model", bridge.DefaultModel, "gemini model ("+strings.Join(bridge.SupportedModels, ", ")+")")
	cmd.Flags().StringVar(&f.taskType, "task-type", bridge.TaskLogic, "task type: code, research, products or logic")
	cmd.Flags().StringVar(&f.depth, "depth", "", "reasoning depth; \"deep\" marks an escalation")
	cmd.Flags().IntVar(&f.attempts, "attempts", 1, "attempt number of this query")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", bridge.DefaultMaxTokens, "maximum output tokens")
	cmd.Flags().Float32Var(&f.temperature, "temperature", bridge.DefaultTemperature, "sampling temperature")

	return cmd
}
