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

package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/syllabyte/brainprogress/internal/manifest/schema"
)

// DefaultValues maps dot-notation paths to the schema default at that path.
//
// Examples of keys:
//   - "indicator.width" -> 200
//   - "indicator.cycle.pauseAtTrough" -> "300ms"
type DefaultValues map[string]any

// Global cache of compiled schemas keyed "{version}-{schemaType}".
var (
	compiledSchemaCache = make(map[string]*schemaInfo)
	schemaMutex         sync.RWMutex
)

// schemaInfo holds the compiled schema for validation and the raw document
// for default extraction.
type schemaInfo struct {
	compiled *jsonschema.Schema
	rawData  map[string]any
}

// getCachedSchemaInfo returns the compiled schema, loading it on first use.
func getCachedSchemaInfo(version string, schemaType schema.SchemaType) (*schemaInfo, error) {
	cacheKey := fmt.Sprintf("%s-%s", version, schemaType)

	schemaMutex.RLock()
	if cached, exists := compiledSchemaCache[cacheKey]; exists {
		schemaMutex.RUnlock()
		return cached, nil
	}
	schemaMutex.RUnlock()

	schemaBytes, err := schema.Get(version, schemaType)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s schema version %q: %w", schemaType, version, err)
	}

	var schemaObj map[string]any
	if err := json.Unmarshal(schemaBytes, &schemaObj); err != nil {
		return nil, fmt.Errorf("failed to parse %s schema JSON for version %q: %w", schemaType, version, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	schemaURL := fmt.Sprintf("internal://%s-%s.json", schemaType, version)

	if err := compiler.AddResource(schemaURL, schemaObj); err != nil {
		return nil, fmt.Errorf("failed to add schema resource for %s version %q: %w", schemaType, version, err)
	}

	compiledSchema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema for version %q: %w", schemaType, version, err)
	}

	result := &schemaInfo{compiled: compiledSchema, rawData: schemaObj}

	schemaMutex.Lock()
	compiledSchemaCache[cacheKey] = result
	schemaMutex.Unlock()

	return result, nil
}

// ClearSchemaCache drops every compiled schema.
func ClearSchemaCache() {
	schemaMutex.Lock()
	defer schemaMutex.Unlock()
	compiledSchemaCache = make(map[string]*schemaInfo)
}

// extractDefaultsFromSchemaData walks "properties" and records every "default".
// Pattern and array schemas carry no defaults in indicator manifests.
func extractDefaultsFromSchemaData(schemaData any, path string, defaults DefaultValues) {
	schemaMap, ok := schemaData.(map[string]any)
	if !ok {
		return
	}

	if defaultVal, exists := schemaMap["default"]; exists && path != "" {
		defaults[path] = defaultVal
	}

	if properties, exists := schemaMap["properties"].(map[string]any); exists {
		for propName, propSchema := range properties {
			propPath := propName
			if path != "" {
				propPath = path + "." + propName
			}
			extractDefaultsFromSchemaData(propSchema, propPath, defaults)
		}
	}
}

// GetDefaultValues extracts every default value of the schema at version.
func GetDefaultValues(version string, schemaType schema.SchemaType) (DefaultValues, error) {
	info, err := getCachedSchemaInfo(version, schemaType)
	if err != nil {
		return nil, err
	}

	defaults := make(DefaultValues)
	extractDefaultsFromSchemaData(info.rawData, "", defaults)
	return defaults, nil
}

// Tree expands the dot-notation paths into a nested document.
func (d DefaultValues) Tree() map[string]any {
	tree := make(map[string]any)
	for path, value := range d {
		parts := strings.Split(path, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return tree
}

// WithDefaults returns obj laid over the schema defaults. Values present in
// obj always win, zero values included.
func WithDefaults(obj map[string]any, version string) (map[string]any, error) {
	if obj == nil {
		return nil, fmt.Errorf("manifest document cannot be nil")
	}
	if version == "" {
		return nil, fmt.Errorf("version cannot be empty")
	}

	defaults, err := GetDefaultValues(version, schema.SchemaTypeIndicator)
	if err != nil {
		return nil, fmt.Errorf("failed to get default values: %w", err)
	}

	merged := defaults.Tree()
	if err := mergo.Merge(&merged, obj, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge default values: %w", err)
	}
	return merged, nil
}

// CreateManifestWithDefaults returns a manifest for name with every schema
// default filled in.
func CreateManifestWithDefaults(name, version string) (*Manifest, error) {
	if version == "" {
		latest, err := schema.GetLatestVersion()
		if err != nil {
			return nil, fmt.Errorf("failed to get latest schema version: %w", err)
		}
		version = latest
	}

	obj := map[string]any{
		"apiVersion": version,
		"indicator":  map[string]any{},
	}
	if name != "" {
		obj["name"] = name
	}
	merged, err := WithDefaults(obj, version)
	if err != nil {
		return nil, err
	}
	return decode(merged)
}
