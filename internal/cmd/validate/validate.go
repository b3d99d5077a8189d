package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/logging"
)

// New creates the validate sub-command for the CLI.
func New() *cobra.Command {
	validateCommand := &cobra.Command{
		Use:   "validate",
		Short: "Validate an indicator manifest",
		Long:  `Validate an indicator manifest against its JSON schema and check that its reveal table is nested.`,
		Example: `
# Validate the manifest in the current directory (./.brainprogress.yaml)
brainprogress validate

# Validate a manifest with an explicit path
brainprogress validate -f ./path/to/brain.yaml
`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	return validateCommand
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger(cmd)

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}

	m, err := rt.Manifest(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	if _, err := m.Props(); err != nil {
		return fmt.Errorf("invalid indicator: %w", err)
	}

	logger.Info("Indicator found", "name", m.Name, "autoplay", m.Indicator.Autoplay, "file", rt.ManifestPath())
	logger.Info("Manifest validated successfully")

	return nil
}
