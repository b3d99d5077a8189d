package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"sigs.k8s.io/yaml"

	"github.com/syllabyte/brainprogress/internal/logging"
)

// resolveEnvFile determines which env file to use relative to the manifest
// directory. Returns the path, whether it was explicitly set, and an error if
// explicitly set but missing.
func resolveEnvFile(dir, envFile string) (string, bool, error) {
	if envFile != "" {
		path := envFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if fileExists(path) {
			return path, true, nil
		}
		return "", true, fmt.Errorf("explicit envFile %q does not exist", envFile)
	}

	candidates := []string{
		filepath.Join(dir, DefaultEnvFile),
		filepath.Join(dir, ConfigDir, DefaultEnvFile),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path, false, nil
		}
	}
	return "", false, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes the manifest to a YAML file at the specified path.
func Save(manifest *Manifest, path string) error {
	if path == "" {
		path = DefaultManifestPath
	}

	data, err := Marshal(manifest)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest to %s: %w", path, err)
	}

	return nil
}

// Marshal renders the manifest as YAML.
func Marshal(manifest *Manifest) ([]byte, error) {
	if manifest == nil {
		return nil, fmt.Errorf("manifest cannot be nil")
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest to YAML: %w", err)
	}
	return data, nil
}

// Load reads the manifest at path and parses it. The directory of path is
// the base for env file resolution.
func Load(ctx context.Context, path string) (*Manifest, error) {
	if path == "" {
		path = DefaultManifestPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := Parse(ctx, data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse validates the API version, substitutes variables according to
// precedence (manifest variables < env file < BRAIN_VAR_ OS variables),
// validates against the schema, fills defaults and decodes the result.
func Parse(ctx context.Context, data []byte, dir string) (*Manifest, error) {
	logger := logging.From(ctx)
	if logger == nil {
		logger = log.Default()
	}

	var manifestObj map[string]any
	if err := yaml.Unmarshal(data, &manifestObj); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	if manifestObj == nil {
		return nil, fmt.Errorf("manifest is empty")
	}

	version, err := ValidateAPIVersion(manifestObj)
	if err != nil {
		return nil, err
	}

	var tmp struct {
		EnvFile   string            `json:"envFile"`
		Variables map[string]string `json:"variables"`
	}
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("failed to parse manifest variables: %w", err)
	}

	envFilePath, explicitlySet, err := resolveEnvFile(dir, tmp.EnvFile)
	if err != nil {
		return nil, err
	}
	if envFilePath != "" {
		logger.Debug("using env file", "file", envFilePath, "explicit", explicitlySet)
	} else {
		logger.Debug("no env file found, proceeding without one", "dir", dir)
	}

	variables, err := Variables(tmp.Variables, envFilePath, explicitlySet)
	if err != nil {
		return nil, err
	}

	substituted, err := SubstituteVariables(data, variables)
	if err != nil {
		return nil, err
	}

	var substitutedObj map[string]any
	if err := yaml.Unmarshal(substituted, &substitutedObj); err != nil {
		return nil, fmt.Errorf("failed to parse substituted manifest YAML: %w", err)
	}

	if err := ValidateManifest(substitutedObj, version); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	merged, err := WithDefaults(substitutedObj, version)
	if err != nil {
		return nil, err
	}

	m, err := decode(merged)
	if err != nil {
		return nil, err
	}

	if err := ValidateIndicator(m); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	logger.Debug("loaded manifest", "version", version, "name", m.Name, "autoplay", m.Indicator.Autoplay)
	return m, nil
}
