package manifest

import (
	"fmt"
	"slices"

	"github.com/syllabyte/brainprogress/internal/manifest/schema"
)

// validateAgainstSchema validates a decoded YAML document against the schema
// of the given type and version.
func validateAgainstSchema(obj map[string]any, version string, schemaType schema.SchemaType) error {
	info, err := getCachedSchemaInfo(version, schemaType)
	if err != nil {
		return err
	}
	if err := info.compiled.Validate(obj); err != nil {
		return fmt.Errorf("%s validation failed for schema version %q: %w", schemaType, version, err)
	}
	return nil
}

// ValidateManifest validates the manifest document against the indicator
// schema at version. Unknown fields are not allowed.
func ValidateManifest(manifestObj map[string]any, version string) error {
	return validateAgainstSchema(manifestObj, version, schema.SchemaTypeIndicator)
}

// ValidateAPIVersion checks the manifest's apiVersion field for presence, type, and validity.
// Returns the apiVersion string if valid, or an error otherwise.
func ValidateAPIVersion(manifestObj map[string]any) (string, error) {
	validVersions, err := schema.GetValidVersions()
	if err != nil {
		return "", fmt.Errorf("failed to get valid manifest versions: %w", err)
	}

	apiVersionVal, ok := manifestObj["apiVersion"]
	if !ok {
		return "", fmt.Errorf("manifest is missing 'apiVersion' field")
	}

	apiVersionStr, ok := apiVersionVal.(string)
	if !ok || apiVersionStr == "" {
		return "", fmt.Errorf("'apiVersion' field must be a non-empty string")
	}

	if !slices.Contains(validVersions, apiVersionStr) {
		return "", fmt.Errorf("unsupported manifest schema version: %s (valid: %v)", apiVersionStr, validVersions)
	}

	return apiVersionStr, nil
}

// ValidateIndicator checks the rules the schema cannot express: the reveal
// table must nest and name known paths, and value needs a max.
func ValidateIndicator(m *Manifest) error {
	if m == nil {
		return fmt.Errorf("manifest cannot be nil")
	}
	ind := m.Indicator
	if ind.Value != nil && ind.Max == nil {
		return fmt.Errorf("indicator 'value' requires 'max'")
	}
	if ind.Autoplay && (ind.Percent != nil || ind.Value != nil) {
		return fmt.Errorf("autoplay indicators cannot set 'percent' or 'value'")
	}
	if len(ind.Steps) > 0 {
		if _, err := m.Table(); err != nil {
			return fmt.Errorf("invalid 'steps': %w", err)
		}
	}
	return nil
}
