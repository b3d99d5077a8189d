package initialize

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/manifest"
	"github.com/syllabyte/brainprogress/internal/ui"
)

// DefaultOutputFile is where the manifest is written unless --output is set.
const DefaultOutputFile = manifest.DefaultManifestPath

// Dry-run mode constants
const (
	DryRunPreviewHeader = "=== DRY RUN MODE - PREVIEW OF GENERATED MANIFEST ===\n"
	DryRunPreviewFooter = "\n=== END PREVIEW ===\n\nThis is a preview. Use --dry-run=false to actually save the manifest."
)

// Options holds the flags of the init command.
type Options struct {
	OutputPath     string
	DryRun         bool
	NonInteractive bool
	Name           string
}

func New() *cobra.Command {
	initCommand := &cobra.Command{
		Use:     "init",
		Aliases: []string{"initialize"},
		Short:   "Create an indicator manifest",
		Long:    `Create an indicator manifest by answering a few questions, or from defaults with --yes.`,
		Args:    cobra.NoArgs,
		RunE:    runInit,
		Example: `
# Create ./.brainprogress.yaml interactively
brainprogress init

# Write the manifest somewhere else
brainprogress init --output brain.yaml

# Preview the generated manifest without saving it
brainprogress init --dry-run

# Accept every default
brainprogress init --yes --name upload
		`,
	}

	initCommand.Flags().StringP("output", "o", DefaultOutputFile, "The output file path.")
	initCommand.Flags().BoolP("dry-run", "d", false, "Preview the generated manifest without saving it")
	initCommand.Flags().BoolP("yes", "y", false, "Skip the questions and use the defaults")
	initCommand.Flags().String("name", "", "Indicator name (generated when empty)")

	return initCommand
}

func runInit(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)
	logger.Info("Starting manifest initialization", "cmd", "init")

	opts := Options{}
	opts.OutputPath, _ = cmd.Flags().GetString("output")
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	opts.NonInteractive, _ = cmd.Flags().GetBool("yes")
	opts.Name, _ = cmd.Flags().GetString("name")

	defaults, err := manifest.CreateManifestWithDefaults(opts.Name, "")
	if err != nil {
		return fmt.Errorf("failed to build default manifest: %w", err)
	}

	answers := ui.DefaultInitAnswers(defaults)
	if answers.Name == "" {
		answers.Name = GenerateName()
	}

	if !opts.NonInteractive {
		if err := ui.CollectWithForm(ui.NewInitForm(answers), "failed to collect indicator settings"); err != nil {
			return err
		}
		if !answers.Confirmed {
			logger.Info("Initialization cancelled")
			return nil
		}
	}

	m, err := BuildManifest(defaults, answers)
	if err != nil {
		return fmt.Errorf("failed to build manifest: %w", err)
	}

	if !opts.NonInteractive {
		progress := ui.NewProgressTracker()
		for range ui.WizardStepCount - 1 {
			progress.NextStep()
		}
		if err := ui.CollectWithForm(ui.CreateNoteForm(progress.GetCurrentStep(), Summary(m, opts)), "failed to show summary"); err != nil {
			return err
		}
	}

	if opts.DryRun {
		data, err := manifest.Marshal(m)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, DryRunPreviewHeader)
		cli.PrintHighlighted(out, data, "yaml")
		fmt.Fprintln(out, DryRunPreviewFooter)
		logger.Info("Manifest initialization completed (dry-run mode)", "name", m.Name, "output", opts.OutputPath)
		return nil
	}

	if err := manifest.Save(m, opts.OutputPath); err != nil {
		return fmt.Errorf("failed to save manifest to %s: %w", opts.OutputPath, err)
	}

	logger.Info("Manifest initialization completed successfully",
		"name", m.Name,
		"autoplay", m.Indicator.Autoplay,
		"output", opts.OutputPath)
	return nil
}

// GenerateName returns a random indicator name accepted by the schema.
func GenerateName() string {
	return "brain-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// BuildManifest applies the wizard answers to a copy of the defaults and
// validates the result.
func BuildManifest(defaults *manifest.Manifest, a *ui.InitAnswers) (*manifest.Manifest, error) {
	m := *defaults
	m.Name = a.Name
	if err := manifest.ValidateName(m.Name); err != nil {
		return nil, err
	}

	ind := m.Indicator
	ind.Autoplay = a.Autoplay()
	ind.ShowLabel = a.ShowLabel
	ind.Percent = nil
	if !ind.Autoplay {
		percent, err := cast.ToFloat64E(strings.TrimSpace(a.Percent))
		if err != nil {
			return nil, fmt.Errorf("invalid percent %q: %w", a.Percent, err)
		}
		ind.Percent = ptr.To(percent)
	}
	if a.Width != "" {
		width, err := cast.ToIntE(strings.TrimSpace(a.Width))
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("invalid width %q", a.Width)
		}
		ind.Width = width
	}
	if a.Primary != "" {
		ind.Colors.Primary = a.Primary
	}
	if a.Secondary != "" {
		ind.Colors.Secondary = a.Secondary
	}
	m.Indicator = ind

	if err := manifest.ValidateIndicator(&m); err != nil {
		return nil, err
	}
	if _, err := m.Props(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Summary describes the manifest about to be written.
func Summary(m *manifest.Manifest, opts Options) string {
	var sb strings.Builder
	sb.WriteString("Manifest Summary:\n\n")
	fmt.Fprintf(&sb, "Name: %s\n", m.Name)
	fmt.Fprintf(&sb, "Output: %s\n", opts.OutputPath)
	if opts.DryRun {
		sb.WriteString("Mode: DRY RUN (preview only)\n")
	} else {
		sb.WriteString("Mode: SAVE MANIFEST\n")
	}
	sb.WriteString("\n")

	if m.Indicator.Autoplay {
		sb.WriteString("Indicator: autoplay\n")
	} else {
		fmt.Fprintf(&sb, "Indicator: manual, starting at %g%%\n", ptr.Deref(m.Indicator.Percent, 0))
	}
	fmt.Fprintf(&sb, "Size: %dx%d\n", m.Indicator.Width, m.Indicator.Height)
	fmt.Fprintf(&sb, "Colors: %s -> %s\n", m.Indicator.Colors.Primary, m.Indicator.Colors.Secondary)
	sb.WriteString("\n")

	sb.WriteString("Next steps:\n")
	if opts.DryRun {
		sb.WriteString("  1. Review the preview below\n")
		sb.WriteString("  2. Run without --dry-run to save the manifest\n")
	} else {
		sb.WriteString("  1. Validate: brainprogress validate -f " + opts.OutputPath + "\n")
		sb.WriteString("  2. Preview: brainprogress preview -f " + opts.OutputPath + "\n")
	}
	return sb.String()
}
