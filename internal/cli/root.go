// Package cli provides the cobra command tree for the gate binary.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jhuilla/gate"
	"github.com/jhuilla/gate/internal/config"
	"github.com/jhuilla/gate/internal/logging"
	"github.com/jhuilla/gate/internal/runner"
	"github.com/jhuilla/gate/internal/workflow"
)

// app holds the global flags and output channels shared by subcommands.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	verbose    bool
	configPath string
	logger     *zap.Logger
}

// NewRootCmd creates the root cobra command for gate.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "gate",
		Short: "Run verification gates and report failures to agents",
		Long: `gate - run a repository's verification gates

Gates (lint, typecheck, test, build, ...) are shell commands grouped into
phases in gate.config.yml. A phase runs its gates in order, each with a
timeout, and reports a structured pass/fail result. Progress and gate
output go to stderr; stdout only carries requested machine-readable output.`,
		Version:       gate.Version,
		SilenceErrors: true, // main prints errors
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.New(logging.Options{Verbose: a.verbose, Writer: a.stderr})
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "log debug diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: "+config.FileName+" in the current or a parent directory)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newRunCmd(a),
		newBundleCmd(a),
		newClaudeCmd(a),
		newInitCmd(a),
		newSchemaCmd(a),
		newMCPCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// Execute runs the command tree with args. Cancelling ctx terminates any
// running gate.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads the config for the current directory or --config.
func (a *app) loadConfig() (*config.LoadResult, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining workspace: %w", err)
	}
	return config.Load(workspace, a.configPath)
}

// newEngine builds an engine whose gates stream their output to live.
func (a *app) newEngine(live io.Writer) (*workflow.Engine, error) {
	loaded, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.log().Debug("config loaded", zap.String("path", loaded.Path), zap.String("repo_root", loaded.RepoRoot))

	return &workflow.Engine{
		Config:   loaded.Config,
		Runner:   &runner.Runner{Live: live, Logger: a.log()},
		RepoRoot: loaded.RepoRoot,
		Logger:   a.log(),
		Progress: live,
	}, nil
}

func (a *app) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}
