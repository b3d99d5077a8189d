package preview

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/runtime"
	"github.com/syllabyte/brainprogress/internal/tui"
)

// New creates the preview sub-command.
func New() *cobra.Command {
	previewCommand := &cobra.Command{
		Use:   "preview",
		Short: "Preview the indicator in the terminal",
		Long: `Preview the indicator live in the terminal.

Manual indicators are driven with the keyboard; autoplay indicators fill and drain on their own.
Named manual indicators save their progress when the preview ends.`,
		Example: `
# Preview the manifest indicator
brainprogress preview

# Preview the fast autoplay demo
brainprogress preview --demo
`,
		Args: cobra.NoArgs,
		RunE: runPreview,
	}

	previewCommand.Flags().Bool("demo", false, "Preview the built-in autoplay demo instead of the manifest")
	previewCommand.Flags().Duration("interval", tui.DefaultInterval, "Frame interval")
	previewCommand.Flags().Float64("step", tui.DefaultStep, "Percent change of one key press")

	return previewCommand
}

func runPreview(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)

	demo, _ := cmd.Flags().GetBool("demo")
	interval, _ := cmd.Flags().GetDuration("interval")
	step, _ := cmd.Flags().GetFloat64("step")
	if !runtime.ValidateTickInterval(interval) {
		return fmt.Errorf("--interval must be between %s and %s", runtime.TickIntervalMin, runtime.TickIntervalMax)
	}

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}

	var (
		ind   *indicator.Indicator
		title = "demo"
	)
	if demo {
		ind, err = indicator.New(tui.DemoProps(),
			indicator.WithClock(rt.Clock()),
			indicator.WithLogger(rt.ObservableLogger()))
	} else {
		ind, err = rt.Indicator(cmd.Context())
		if m, merr := rt.Manifest(cmd.Context()); merr == nil && m.Name != "" {
			title = m.Name
		} else {
			title = rt.ManifestPath()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create indicator: %w", err)
	}

	logger.Debug("Starting preview", "mode", ind.Mode().String(), "interval", interval)
	start := time.Now()

	if err := tui.Run(cmd.Context(), ind, rt.Clock(), rt.ObservableLogger(),
		tui.WithTitle(title),
		tui.WithInterval(interval),
		tui.WithStep(step),
	); err != nil {
		return err
	}

	st := ind.State()
	logger.Info("Preview closed", "percent", st.Percent, "step", st.Step.String(), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
