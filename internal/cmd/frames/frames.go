// Package frames implements the frames command, which exports an animation
// as a numbered sequence of SVG documents.
package frames

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/progress"
	"github.com/syllabyte/brainprogress/internal/render"
	"github.com/syllabyte/brainprogress/internal/tui"
)

const (
	// DefaultFPS is the default frame rate of exported sequences.
	DefaultFPS = 30

	// MaxFPS caps the frame rate of exported sequences.
	MaxFPS = 1000

	// MaxFrames caps the size of one export.
	MaxFrames = 10000

	// DefaultOutputDir receives the frames unless --output is set.
	DefaultOutputDir = "frames"

	// FileNamePattern names the frame files.
	FileNamePattern = "frame-%04d.svg"
)

// Options holds the flags of the frames command.
type Options struct {
	FPS      int
	Duration time.Duration
	Output   string
	Demo     bool
	From     float64
	Percent  *float64
}

// Result summarizes an export.
type Result struct {
	Frames int
	Unique int
	Bytes  int64
	Span   time.Duration
}

func New() *cobra.Command {
	framesCommand := &cobra.Command{
		Use:   "frames",
		Short: "Export an animation as numbered SVG frames",
		Long: `Export the animation of the indicator as a sequence of SVG documents sampled at --fps.

Autoplay indicators are sampled over one full fill and drain cycle unless --duration is set.
Manual indicators are animated from --from to the manifest progress (or --percent) until
the transition settles.`,
		Example: `
# Export one cycle of the demo preset
brainprogress frames --demo -o ./demo

# Export the fill from 0% to 75% at 60 frames per second
brainprogress frames --percent 75 --fps 60
`,
		Args: cobra.NoArgs,
		RunE: runFrames,
	}

	framesCommand.Flags().Int("fps", DefaultFPS, fmt.Sprintf("Frames per second (1-%d)", MaxFPS))
	framesCommand.Flags().Duration("duration", 0, "Length of the export (default one cycle, or until settled)")
	framesCommand.Flags().StringP("output", "o", DefaultOutputDir, "Directory receiving the frames")
	framesCommand.Flags().Bool("demo", false, "Export the built-in autoplay demo instead of the manifest")
	framesCommand.Flags().Float64("from", 0, "Starting percentage of manual indicators")
	framesCommand.Flags().Float64("percent", 0, "Target percentage of manual indicators, overrides the manifest")

	return framesCommand
}

func runFrames(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)

	opts := Options{}
	opts.FPS, _ = cmd.Flags().GetInt("fps")
	opts.Duration, _ = cmd.Flags().GetDuration("duration")
	opts.Output, _ = cmd.Flags().GetString("output")
	opts.Demo, _ = cmd.Flags().GetBool("demo")
	opts.From, _ = cmd.Flags().GetFloat64("from")
	if cmd.Flags().Changed("percent") {
		p, _ := cmd.Flags().GetFloat64("percent")
		opts.Percent = ptr.To(p)
	}
	if err := validateFPS(opts.FPS); err != nil {
		return fmt.Errorf("--fps: %w", err)
	}
	if opts.Duration < 0 {
		return fmt.Errorf("--duration must not be negative")
	}

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}

	var sim *cli.Simulation
	if opts.Demo {
		sim, err = cli.NewPropsSimulation(rt, tui.DemoProps())
	} else {
		sim, err = cli.NewSimulation(cmd.Context(), rt, indicator.WithStore(nil, ""))
	}
	if err != nil {
		return fmt.Errorf("failed to create indicator: %w", err)
	}
	defer sim.Indicator.Stop()

	cache := render.NewCache(0, sim.Clock, rt.ObservableLogger())

	var result Result
	err = spinner.New().
		Title(fmt.Sprintf("Exporting frames to %s...", opts.Output)).
		Context(cmd.Context()).
		ActionWithErr(func(ctx context.Context) error {
			var err error
			result, err = Export(ctx, sim, cache, opts)
			return err
		}).
		Run()
	if err != nil {
		return fmt.Errorf("frame export failed: %w", err)
	}

	logger.Info("Frames exported",
		"frames", humanize.Comma(int64(result.Frames)),
		"unique", humanize.Comma(int64(result.Unique)),
		"size", humanize.Bytes(uint64(result.Bytes)),
		"span", result.Span,
		"dir", opts.Output)
	return nil
}

// Span returns how long the export of ind lasts when no duration is given.
func Span(ind *indicator.Indicator) time.Duration {
	if ind.Mode() == indicator.Autoplay {
		cfg := ind.Driver().Config()
		return 2*cfg.FillDuration() + cfg.Peak() + cfg.Trough()
	}
	return ind.Remaining()
}

func validateFPS(fps int) error {
	if fps <= 0 || fps > MaxFPS {
		return fmt.Errorf("frame rate must be between 1 and %d, got %d", MaxFPS, fps)
	}
	return nil
}

// Export samples sim every 1/fps and writes one document per sample.
func Export(ctx context.Context, sim *cli.Simulation, cache *render.Cache, opts Options) (Result, error) {
	if err := validateFPS(opts.FPS); err != nil {
		return Result{}, err
	}
	ind := sim.Indicator

	if ind.Mode() == indicator.Manual {
		target := ind.Props().Input()
		if opts.Percent != nil {
			target = progress.Input{Percent: opts.Percent}
		}
		if err := ind.SetProgress(progress.Input{Percent: ptr.To(progress.Clamp(opts.From))}); err != nil {
			return Result{}, err
		}
		if _, err := sim.Settle(); err != nil {
			return Result{}, err
		}
		if err := ind.SetProgress(target); err != nil {
			return Result{}, err
		}
	}

	span := opts.Duration
	if span == 0 {
		span = Span(ind)
	}
	interval := time.Second / time.Duration(opts.FPS)
	count := int(math.Ceil(float64(span)/float64(interval))) + 1
	if count > MaxFrames {
		return Result{}, fmt.Errorf("export of %s at %d fps needs %s frames, the limit is %s",
			span, opts.FPS, humanize.Comma(int64(count)), humanize.Comma(MaxFrames))
	}

	result := Result{Span: span}
	var buf bytes.Buffer
	for i := range count {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i > 0 {
			sim.Advance(interval)
		} else {
			sim.Advance(0)
		}

		buf.Reset()
		if err := ind.RenderCached(&buf, cache); err != nil {
			return result, fmt.Errorf("failed to render frame %d: %w", i, err)
		}
		path := filepath.Join(opts.Output, fmt.Sprintf(FileNamePattern, i))
		if err := cli.WriteOutput(nil, path, buf.Bytes()); err != nil {
			return result, err
		}
		result.Frames++
		result.Bytes += int64(buf.Len())
	}
	result.Unique = cache.Info().Count
	return result, nil
}
