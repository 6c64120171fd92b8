package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhuilla/gate/internal/bundle"
	"github.com/jhuilla/gate/internal/report"
	"github.com/jhuilla/gate/internal/workflow"
)

const (
	formatHuman = "human"
	formatJSON  = "json"
)

func newRunCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "run <phase>",
		Short: "Run every gate of a phase",
		Long: `Run the gates of a phase in order.

Human mode writes nothing to stdout: progress, gate output and a summary go
to stderr. With --format json the phase result is written to stdout as a
single JSON document, so stdout can be captured safely.

Exit status: 0 when every gate passed, 1 when a gate failed, 2 on
configuration or usage errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatHuman && format != formatJSON {
				return fmt.Errorf("invalid --format %q: expected %s or %s", format, formatHuman, formatJSON)
			}

			pr, _, err := a.runPhase(cmd, args[0])
			if err != nil {
				return err
			}

			if format == formatJSON {
				data, err := json.Marshal(pr)
				if err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
				fmt.Fprintf(a.stdout, "%s\n", data)
			}
			return phaseExit(pr)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatHuman, "output format: human or json")
	return cmd
}

func newBundleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bundle <phase>",
		Short: "Run a phase and print a remediation bundle if it fails",
		Long: `Run the gates of a phase. When the phase fails, the remediation bundle
for an automated fixing agent is written to stdout and the exit status is 1.
When it passes, stdout stays empty and the exit status is 0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pr, eng, err := a.runPhase(cmd, args[0])
			if err != nil {
				return err
			}
			if !pr.Passed() {
				fmt.Fprint(a.stdout, bundle.Render(pr, eng.Config))
			}
			return phaseExit(pr)
		},
	}
}

// newClaudeCmd keeps the `gate claude bundle <phase>` spelling.
func newClaudeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "claude",
		Short:  "Agent integration commands",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("expected: gate claude bundle <phase>")
		},
	}
	cmd.AddCommand(newBundleCmd(a))
	return cmd
}

// runPhase runs phase with live output and a summary on stderr.
func (a *app) runPhase(cmd *cobra.Command, phase string) (*report.PhaseResult, *workflow.Engine, error) {
	eng, err := a.newEngine(a.stderr)
	if err != nil {
		return nil, nil, err
	}
	pr, err := eng.RunPhase(cmd.Context(), phase)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(a.stderr, "\n%s", workflow.FormatSummary(pr))
	return pr, eng, nil
}

func phaseExit(pr *report.PhaseResult) error {
	if pr.Passed() {
		return nil
	}
	return &ExitError{Code: ExitFail}
}
