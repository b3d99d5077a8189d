// Copyright 2025 The Brainprogress Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd provides the commands of the brainprogress CLI.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/cmd/frames"
	"github.com/syllabyte/brainprogress/internal/cmd/initialize"
	"github.com/syllabyte/brainprogress/internal/cmd/inspect"
	"github.com/syllabyte/brainprogress/internal/cmd/preview"
	"github.com/syllabyte/brainprogress/internal/cmd/render"
	"github.com/syllabyte/brainprogress/internal/cmd/state"
	"github.com/syllabyte/brainprogress/internal/cmd/validate"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/manifest"
	"github.com/syllabyte/brainprogress/internal/runtime"
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand creates the root command. Every sub-command receives a
// runtime and a logger through its context.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "brainprogress",
		Short: "Render and preview the animated brain progress indicator",
		Long: `brainprogress renders an SVG brain whose paths are revealed as progress grows.
It renders single documents, exports autoplay frame sequences, previews indicators in the terminal
and keeps the last progress of named indicators between runs.`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			noColor, _ := cmd.Flags().GetBool("no-color")
			quiet, _ := cmd.Flags().GetBool("quiet")

			// When quiet is true, SilenceErrors prevents showing usage when a subcommand returns an error.
			cmd.SilenceErrors = quiet
			cmd.SilenceUsage = true

			if v := os.Getenv(manifest.LogLevelEnvVar); v != "" && !cmd.Flags().Changed("log-level") {
				logLevel = v
			}
			if os.Getenv(runtime.DebugEnvVar) != "" {
				logLevel = log.DebugLevel.String()
			}

			noColor = noColor || color.NoColor
			if noColor {
				color.NoColor = true
			}

			if err := logging.SetupCharmLogger(cmd, logLevel, noColor, quiet); err != nil {
				return err
			}

			return setupRuntime(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			obs := logging.FromObservable(cmd.Context())
			if obs != nil {
				if collector := obs.Collector(); collector != nil {
					_ = collector.ExportMetrics(cmd.Context())
				}
				defer obs.Close()
			}
			if rt := runtime.FromRuntime(cmd.Context()); rt != nil {
				return rt.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("log-level", "l", log.InfoLevel.String(), "Set the logging level (debug|info|warn|error|fatal)")
	rootCmd.PersistentFlags().Bool("no-color", false, "If specified, output won't contain any color.")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Quiet or silent mode. Do not show logs or error messages.")
	rootCmd.PersistentFlags().StringP("file", "f", manifest.DefaultManifestPath, "Path to the indicator manifest (YAML or JSON)")
	rootCmd.PersistentFlags().String("state-file", "", "Path to the saved progress file (default $XDG_STATE_HOME/brainprogress/state.yaml)")

	rootCmd.AddCommand(
		render.New(),
		frames.New(),
		preview.New(),
		validate.New(),
		initialize.New(),
		inspect.New(),
		state.New(),
	)

	return rootCmd
}

// setupRuntime attaches a runtime configured from the global flags.
func setupRuntime(cmd *cobra.Command) error {
	manifestPath, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	if v := os.Getenv(runtime.ManifestEnvVar); v != "" && !cmd.Flags().Changed("file") {
		manifestPath = v
	}
	statePath, err := cmd.Flags().GetString("state-file")
	if err != nil {
		return err
	}

	obs := logging.GetObservableLogger(cmd)
	rt := runtime.New(
		runtime.WithManifestPath(manifestPath),
		runtime.WithStatePath(statePath),
		runtime.WithObservableLogger(obs),
		runtime.WithLogger(runtime.NewLoggerAdapter(obs.Logger())),
	)
	cmd.SetContext(runtime.WithRuntime(cmd.Context(), rt))
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := fang.Execute(ctx, NewRootCommand(), fang.WithVersion(Version)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return cli.ExitTimedOut
		}
		return cli.ExitError
	}
	return cli.ExitSuccess
}
