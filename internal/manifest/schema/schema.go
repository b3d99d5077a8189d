// Package schema embeds the versioned JSON schemas of indicator manifests.
package schema

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FS is the embedded filesystem containing the schema files.
//
//go:embed **/*.json
var fs embed.FS

// SchemaType is the type of schema.
type SchemaType string

// String returns the string representation of the schema type.
func (s SchemaType) String() string {
	return string(s)
}

const (
	// SchemaTypeIndicator is the type of schema for validating indicator manifests.
	SchemaTypeIndicator SchemaType = "indicator"
)

var (
	// versionRegex matches version strings in the format "v1-alpha.1", "v1-beta.2", etc.
	versionRegex = regexp.MustCompile(`^v(\d+)(?:-(alpha|beta|rc)\.(\d+))?$`)
	// preReleaseOrder defines the order of pre-release types.
	preReleaseOrder = map[string]int{"alpha": 0, "beta": 1, "rc": 2, "": 3}
)

// Get returns the schema of the given type at a specific version.
func Get(version string, schemaType SchemaType) ([]byte, error) {
	fileName := version + "/" + schemaType.String() + ".json"
	data, err := fs.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("%s schema not found for version %s", schemaType, version)
	}
	return data, nil
}

// GetIndicatorSchema retrieves the JSON schema for validating indicator manifests.
// Version strings should follow the format "v1-alpha.1", "v1-beta.2", etc.
func GetIndicatorSchema(version string) ([]byte, error) {
	return Get(version, SchemaTypeIndicator)
}

// GetIndicatorSchemas returns a map of version string to indicator schema.
func GetIndicatorSchemas() (map[string][]byte, error) {
	files, err := fs.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	schemas := make(map[string][]byte)
	for _, file := range files {
		if !file.IsDir() {
			continue
		}
		version := file.Name()
		schema, err := GetIndicatorSchema(version)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema for version %s: %w", version, err)
		}
		schemas[version] = schema
	}

	return schemas, nil
}

// getSortedVersions returns the embedded versions in ascending order.
func getSortedVersions() ([]string, error) {
	schemas, err := GetIndicatorSchemas()
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator schemas: %w", err)
	}

	versions := make([]string, 0, len(schemas))
	for v := range schemas {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return compareSchemaVersions(versions[i], versions[j]) < 0
	})
	return versions, nil
}

// GetLatestIndicatorSchema returns the latest indicator schema by version order.
func GetLatestIndicatorSchema() ([]byte, error) {
	version, err := GetLatestVersion()
	if err != nil {
		return nil, err
	}
	return GetIndicatorSchema(version)
}

// GetLatestVersion returns the latest schema version.
func GetLatestVersion() (string, error) {
	versions, err := getSortedVersions()
	if err != nil {
		return "", fmt.Errorf("failed to get sorted versions: %w", err)
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no indicator schemas found")
	}
	return versions[len(versions)-1], nil
}

// GetValidVersions returns every embedded schema version in ascending order.
func GetValidVersions() ([]string, error) {
	versions, err := getSortedVersions()
	if err != nil {
		return nil, fmt.Errorf("failed to get sorted versions: %w", err)
	}
	return versions, nil
}

// compareSchemaVersions returns -1 if a < b, 0 if a == b, 1 if a > b
func compareSchemaVersions(a, b string) int {
	parse := func(v string) (major int, pre string, preNum int, valid bool) {
		m := versionRegex.FindStringSubmatch(v)
		if m == nil {
			return 0, "", 0, false
		}
		major, _ = strconv.Atoi(m[1])
		pre = m[2]
		if m[3] != "" {
			preNum, _ = strconv.Atoi(m[3])
		}
		return major, pre, preNum, true
	}

	majA, preA, numA, validA := parse(a)
	majB, preB, numB, validB := parse(b)

	// Invalid versions sort last; two invalid ones compare lexicographically.
	if !validA && !validB {
		return strings.Compare(a, b)
	} else if !validA {
		return 1
	} else if !validB {
		return -1
	}

	if majA != majB {
		return compareInts(majA, majB)
	}

	// alpha < beta < rc < release
	if preReleaseOrder[preA] != preReleaseOrder[preB] {
		return compareInts(preReleaseOrder[preA], preReleaseOrder[preB])
	}

	return compareInts(numA, numB)
}

func compareInts(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
