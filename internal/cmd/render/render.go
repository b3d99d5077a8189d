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

// Package render implements the render command, which writes one document
// of an indicator.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/progress"
	"github.com/syllabyte/brainprogress/internal/ui"
	"github.com/syllabyte/brainprogress/internal/util"
)

// Options holds the flags of the render command.
type Options struct {
	Format  string
	Output  string
	Percent *float64
	Value   *float64
	Max     *float64
	From    *float64
	At      time.Duration
}

// Overrides reports whether the progress comes from flags rather than the
// manifest or the saved state.
func (o Options) Overrides() bool {
	return o.Percent != nil || o.Value != nil
}

// Input returns the progress given on the command line.
func (o Options) Input() progress.Input {
	return progress.Input{Percent: o.Percent, Value: o.Value, Max: o.Max}
}

// New creates the render sub-command.
func New() *cobra.Command {
	renderCommand := &cobra.Command{
		Use:   "render",
		Short: "Render the indicator as an SVG document",
		Long: `Render the indicator described by the manifest.

Transitions are simulated, so the document shows the settled state unless --at picks an
earlier moment. Autoplay indicators are rendered at --at into their cycle.`,
		Example: `
# Render the manifest indicator to stdout
brainprogress render

# Render 60% into a file
brainprogress render --percent 60 -o brain.svg

# Render 3 of 4 files, which is step 75
brainprogress render --value 3 --max 4

# Render the middle of the transition from 25% to 100%
brainprogress render --from 25 --percent 100 --at 400ms

# Inspect the state as JSON
brainprogress render --percent 50 --format json
`,
		Args:    cobra.NoArgs,
		PreRunE: validateFlags,
		RunE:    runRender,
	}

	renderCommand.Flags().String("format", cli.OutputFormatSVG, "Output format ("+strings.Join(cli.RenderFormats, "|")+")")
	renderCommand.Flags().StringP("output", "o", "", "Write the output to a file instead of stdout")
	renderCommand.Flags().Float64("percent", 0, "Progress percentage (0-100), overrides the manifest")
	renderCommand.Flags().Float64("value", 0, "Progress value, used with --max")
	renderCommand.Flags().Float64("max", 0, "Maximum of --value")
	renderCommand.Flags().Float64("from", 0, "Settle at this percentage before moving to the target")
	renderCommand.Flags().Duration("at", 0, "Render this long after the target was set instead of the settled state")

	return renderCommand
}

func validateFlags(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !slices.Contains(cli.RenderFormats, format) {
		return fmt.Errorf("invalid format %q: must be one of %s", format, strings.Join(cli.RenderFormats, ", "))
	}
	if cmd.Flags().Changed("value") != cmd.Flags().Changed("max") {
		return fmt.Errorf("--value and --max must be used together")
	}
	if cmd.Flags().Changed("value") {
		value := cmd.Flags().Lookup("value").Value.String()
		maxValue := cmd.Flags().Lookup("max").Value.String()
		if err := util.ValidateValueMax(value, maxValue); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("percent") && cmd.Flags().Changed("value") {
		return fmt.Errorf("--percent and --value are mutually exclusive")
	}
	if at, _ := cmd.Flags().GetDuration("at"); at < 0 {
		return fmt.Errorf("--at must not be negative")
	}
	return nil
}

// OptionsFromFlags reads the flags of cmd.
func OptionsFromFlags(cmd *cobra.Command) Options {
	flags := cmd.Flags()
	opts := Options{}
	opts.Format, _ = flags.GetString("format")
	opts.Output, _ = flags.GetString("output")
	opts.At, _ = flags.GetDuration("at")

	optional := func(name string) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetFloat64(name)
		return ptr.To(v)
	}
	opts.Percent = optional("percent")
	opts.Value = optional("value")
	opts.Max = optional("max")
	opts.From = optional("from")
	return opts
}

func runRender(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)
	opts := OptionsFromFlags(cmd)

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}

	var indOpts []indicator.Option
	if opts.Overrides() || opts.From != nil {
		// Flag driven renders leave the saved progress alone.
		indOpts = append(indOpts, indicator.WithStore(nil, ""))
	}
	sim, err := cli.NewSimulation(cmd.Context(), rt, indOpts...)
	if err != nil {
		return fmt.Errorf("failed to create indicator: %w", err)
	}
	defer sim.Indicator.Stop()

	st, err := Simulate(sim, opts)
	if err != nil {
		return err
	}

	data, err := Encode(sim.Indicator, st, opts.Format)
	if err != nil {
		return err
	}

	logger.Debug("Rendered indicator", "percent", st.Percent, "step", st.Step, "format", opts.Format, "elapsed", sim.Elapsed())

	if opts.Output == "" && opts.Format != cli.OutputFormatTable {
		language := "xml"
		if opts.Format == cli.OutputFormatJSON {
			language = "json"
		}
		cli.PrintHighlighted(cmd.OutOrStdout(), data, language)
		return nil
	}
	if err := cli.WriteOutput(cmd.OutOrStdout(), opts.Output, data); err != nil {
		return err
	}
	if opts.Output != "" && opts.Output != "-" {
		logger.Info("Indicator rendered", "file", opts.Output, "percent", st.Percent, "step", st.Step.String())
	}
	return nil
}

// Simulate moves the simulated indicator to the moment described by opts.
func Simulate(sim *cli.Simulation, opts Options) (indicator.State, error) {
	ind := sim.Indicator
	target := ind.Props().Input()

	if ind.Mode() == indicator.Autoplay {
		if opts.Overrides() || opts.From != nil {
			return indicator.State{}, fmt.Errorf("autoplay indicators drive their own progress: %w", indicator.ErrSelfDriven)
		}
		return sim.Advance(opts.At), nil
	}

	if opts.From != nil {
		if err := ind.SetProgress(progress.Input{Percent: ptr.To(progress.Clamp(*opts.From))}); err != nil {
			return indicator.State{}, err
		}
		if _, err := sim.Settle(); err != nil {
			return indicator.State{}, err
		}
	}

	if opts.Overrides() {
		if err := ind.SetProgress(opts.Input()); err != nil {
			return indicator.State{}, err
		}
	} else if opts.From != nil {
		if err := ind.SetProgress(target); err != nil {
			return indicator.State{}, err
		}
	}

	if opts.At > 0 {
		return sim.Advance(opts.At), nil
	}
	return sim.Settle()
}

// Encode renders st of ind in format.
func Encode(ind *indicator.Indicator, st indicator.State, format string) ([]byte, error) {
	switch format {
	case cli.OutputFormatJSON:
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state: %w", err)
		}
		return append(data, '\n'), nil
	case cli.OutputFormatTable:
		var buf bytes.Buffer
		fmt.Fprintln(&buf, ui.StatusLine(st))
		rows := make([]ui.Row, 0, len(st.Paths))
		for _, p := range st.Paths {
			rows = append(rows, ui.Row{
				"id":      string(p.ID),
				"visible": fmt.Sprint(p.Visible),
				"opacity": fmt.Sprintf("%.2f", p.Opacity),
				"fill":    fmt.Sprintf("%.2f", p.FillOpacity),
				"dash":    fmt.Sprintf("%.2f", p.DashOffset),
			})
		}
		ui.NewTable().SetColumns(StateColumns()).SetRows(rows).Print(&buf)
		return buf.Bytes(), nil
	default:
		return ind.Surface().Bytes(ind.Frame())
	}
}

// StateColumns returns the columns of the per-path state table.
func StateColumns() []ui.Column {
	return []ui.Column{
		{Title: "PATH", Key: "id", MinWidth: 8, Condition: true},
		{Title: "VISIBLE", Key: "visible", Width: 7, Condition: true},
		{Title: "OPACITY", Key: "opacity", Width: 7, Condition: true},
		{Title: "FILL", Key: "fill", Width: 5, Condition: true},
		{Title: "DASH OFFSET", Key: "dash", Width: 11, Condition: true},
	}
}
