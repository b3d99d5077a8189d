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

// Package state implements the state command group, which manages the
// progress saved by named indicators.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/manifest"
	"github.com/syllabyte/brainprogress/internal/store"
	"github.com/syllabyte/brainprogress/internal/ui"
)

// New creates the state command group.
func New() *cobra.Command {
	stateCommand := &cobra.Command{
		Use:   "state",
		Short: "Manage saved indicator progress",
		Long: `Named manual indicators save their last percentage and restore it the next time they are
created without an explicit progress. These commands list, show, set and clear the saved values.`,
		Args: cobra.NoArgs,
	}

	stateCommand.AddCommand(newListCommand(), newShowCommand(), newSaveCommand(), newClearCommand())
	return stateCommand
}

func outputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", cli.OutputFormatTable, "Output format ("+strings.Join(cli.OutputFormats, "|")+")")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if !slices.Contains(cli.OutputFormats, format) {
			return fmt.Errorf("invalid output format %q: must be one of %s", format, strings.Join(cli.OutputFormats, ", "))
		}
		return nil
	}
}

func newListCommand() *cobra.Command {
	listCommand := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved progress",
		Args:    cobra.NoArgs,
		Example: `
# List saved progress
brainprogress state list

# Include the storage keys, as JSON
brainprogress state list --detailed -o json
`,
		RunE: runList,
	}
	outputFlag(listCommand)
	listCommand.Flags().Bool("detailed", false, "Show the storage keys")
	return listCommand
}

func runList(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)
	format, _ := cmd.Flags().GetString("output")
	detailed, _ := cmd.Flags().GetBool("detailed")

	s, err := cli.GetStore(cmd.Context())
	if err != nil {
		return err
	}
	entries, err := s.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list saved progress: %w", err)
	}

	if len(entries) == 0 && format == cli.OutputFormatTable {
		logger.Info("No saved progress found")
		return nil
	}
	return printEntries(cmd, entries, format, detailed)
}

func printEntries(cmd *cobra.Command, entries []store.Entry, format string, detailed bool) error {
	now := time.Now()
	vms := make([]cli.EntryViewModel, 0, len(entries))
	for _, e := range entries {
		vms = append(vms, cli.EntryToViewModel(e, now))
	}

	if format == cli.OutputFormatJSON {
		data, err := json.MarshalIndent(vms, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal saved progress: %w", err)
		}
		cli.PrintHighlighted(cmd.OutOrStdout(), data, "json")
		return nil
	}

	rows := make([]ui.Row, 0, len(vms))
	for _, vm := range vms {
		rows = append(rows, cli.EntryRow(vm))
	}
	ui.NewTable().SetColumns(cli.GetEntryColumns(detailed)).SetRows(rows).Print(cmd.OutOrStdout())
	return nil
}

func newShowCommand() *cobra.Command {
	showCommand := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the saved progress of one indicator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			s, err := cli.GetStore(cmd.Context())
			if err != nil {
				return err
			}
			e, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no saved progress for %q", args[0])
				}
				return err
			}
			return printEntries(cmd, []store.Entry{e}, format, true)
		},
	}
	outputFlag(showCommand)
	return showCommand
}

func newSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <id> <percent>",
		Short: "Set the saved progress of an indicator",
		Example: `
# Resume the upload indicator at 40%
brainprogress state save upload 40
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger(cmd)
			id := args[0]
			if err := manifest.ValidateName(id); err != nil {
				return err
			}
			if err := manifest.ValidatePercent(args[1]); err != nil {
				return err
			}
			percent, err := cast.ToFloat64E(args[1])
			if err != nil {
				return fmt.Errorf("invalid percent %q: %w", args[1], err)
			}

			s, err := cli.GetStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Save(cmd.Context(), id, percent); err != nil {
				return fmt.Errorf("failed to save progress: %w", err)
			}
			logger.Info("Progress saved", "id", id, "percent", percent, "key", store.Key(id))
			return nil
		},
	}
}

func newClearCommand() *cobra.Command {
	clearCommand := &cobra.Command{
		Use:   "clear [id]",
		Short: "Remove saved progress",
		Example: `
# Forget the upload indicator
brainprogress state clear upload

# Forget everything without asking
brainprogress state clear --all --force
`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClear,
	}
	clearCommand.Flags().Bool("all", false, "Remove the progress of every indicator")
	clearCommand.Flags().Bool("force", false, "Do not ask for confirmation")
	return clearCommand
}

func runClear(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger(cmd)
	all, _ := cmd.Flags().GetBool("all")
	force, _ := cmd.Flags().GetBool("force")

	if all == (len(args) == 1) {
		return fmt.Errorf("pass either an indicator id or --all")
	}

	s, err := cli.GetStore(cmd.Context())
	if err != nil {
		return err
	}

	ids := args
	if all {
		entries, err := s.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list saved progress: %w", err)
		}
		ids = ids[:0:0]
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if len(ids) == 0 {
			logger.Info("No saved progress found")
			return nil
		}
	}

	if !force {
		confirmed := false
		form := huh.NewForm(ui.CreateConfirmGroup(
			"Remove saved progress?",
			fmt.Sprintf("This removes the progress of: %s", strings.Join(ids, ", ")),
			"Remove", "Cancel", &confirmed))
		if err := ui.CollectWithForm(form, "failed to confirm removal"); err != nil {
			return err
		}
		if !confirmed {
			logger.Info("Nothing removed")
			return nil
		}
	}

	removed, err := Clear(cmd, s, ids)
	logger.Info("Saved progress removed", "count", removed)
	return err
}

// Clear deletes the progress of ids. Missing ids are skipped.
func Clear(cmd *cobra.Command, s store.Store, ids []string) (int, error) {
	logger := logging.GetLogger(cmd)
	removed := 0
	var errs []error
	for _, id := range ids {
		err := s.Delete(cmd.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			logger.Warn("No saved progress", "id", id)
		case err != nil:
			errs = append(errs, fmt.Errorf("failed to remove %q: %w", id, err))
		default:
			removed++
		}
	}
	return removed, errors.Join(errs...)
}
