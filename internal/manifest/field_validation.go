package manifest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/spf13/cast"

	"github.com/syllabyte/brainprogress/internal/manifest/schema"
)

// fieldValidators holds compiled regex patterns extracted from the JSON schema
type fieldValidators struct {
	namePattern     *regexp.Regexp
	varNamePattern  *regexp.Regexp
	colorPattern    *regexp.Regexp
	durationPattern *regexp.Regexp
}

var (
	validators    *fieldValidators
	validatorsErr error
	once          sync.Once
)

// initValidators extracts regex patterns from the JSON schema and compiles them
func initValidators() (*fieldValidators, error) {
	schemaBytes, err := schema.GetLatestIndicatorSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to get latest indicator schema: %w", err)
	}

	var schemaData map[string]any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse indicator schema: %w", err)
	}

	paths := map[string][]string{
		"name":     {"properties", "name", "pattern"},
		"variable": {"properties", "variables", "propertyNames", "pattern"},
		"color":    {"properties", "indicator", "properties", "colors", "properties", "primary", "pattern"},
		"duration": {"properties", "indicator", "properties", "cycle", "properties", "pauseAtPeak", "pattern"},
	}
	compiled := make(map[string]*regexp.Regexp, len(paths))
	for field, path := range paths {
		pattern, err := extractPattern(schemaData, path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s pattern: %w", field, err)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s pattern: %w", field, err)
		}
		compiled[field] = re
	}

	return &fieldValidators{
		namePattern:     compiled["name"],
		varNamePattern:  compiled["variable"],
		colorPattern:    compiled["color"],
		durationPattern: compiled["duration"],
	}, nil
}

// extractPattern navigates through nested map structure to extract a pattern string
func extractPattern(data map[string]any, path []string) (string, error) {
	current := data
	for i, key := range path {
		value, exists := current[key]
		if !exists {
			return "", fmt.Errorf("key '%s' not found at path %v", key, path[:i+1])
		}

		if i == len(path)-1 {
			pattern, ok := value.(string)
			if !ok {
				return "", fmt.Errorf("pattern at path %v is not a string", path)
			}
			return pattern, nil
		}

		nextMap, ok := value.(map[string]any)
		if !ok {
			return "", fmt.Errorf("value at path %v is not a map", path[:i+1])
		}
		current = nextMap
	}

	return "", fmt.Errorf("empty path provided")
}

// getValidators ensures validators are initialized and returns them
func getValidators() (*fieldValidators, error) {
	once.Do(func() {
		validators, validatorsErr = initValidators()
	})
	if validatorsErr != nil {
		return nil, fmt.Errorf("failed to initialize validators: %w", validatorsErr)
	}
	return validators, nil
}

// ValidateName validates an indicator name against the JSON schema pattern
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("indicator name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("indicator name '%s' is invalid: must be at most %d characters", name, MaxNameLength)
	}

	v, err := getValidators()
	if err != nil {
		return err
	}

	if !v.namePattern.MatchString(name) {
		return fmt.Errorf("indicator name '%s' is invalid: must be lowercase alphanumeric words separated by '-' or '_'", name)
	}
	return nil
}

// ValidateVarName validates a variable name against the JSON schema pattern
func ValidateVarName(name string) error {
	if name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}

	v, err := getValidators()
	if err != nil {
		return err
	}

	if !v.varNamePattern.MatchString(name) {
		return fmt.Errorf("variable name '%s' is invalid: must be uppercase letters, numbers, and underscores only", name)
	}
	return nil
}

// ValidateColor validates a gradient stop against the JSON schema pattern
func ValidateColor(color string) error {
	if color == "" {
		return fmt.Errorf("color cannot be empty")
	}

	v, err := getValidators()
	if err != nil {
		return err
	}

	if !v.colorPattern.MatchString(color) {
		return fmt.Errorf("color '%s' is invalid: must be a hex value, a color name, or rgb()/rgba()", color)
	}
	return nil
}

// ValidateDuration validates a pause duration such as "300ms" or "1s"
func ValidateDuration(d string) error {
	if d == "" {
		return fmt.Errorf("duration cannot be empty")
	}

	v, err := getValidators()
	if err != nil {
		return err
	}

	if !v.durationPattern.MatchString(d) {
		return fmt.Errorf("duration '%s' is invalid: must be a Go duration such as 300ms or 1s", d)
	}
	return nil
}

// ValidatePercent validates that s is a number. Values outside 0-100 are
// accepted and clamped later.
func ValidatePercent(s string) error {
	if s == "" {
		return fmt.Errorf("percent cannot be empty")
	}
	if _, err := cast.ToFloat64E(s); err != nil {
		return fmt.Errorf("percent '%s' is invalid: must be a number", s)
	}
	return nil
}
