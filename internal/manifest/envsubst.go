package manifest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/fluxcd/pkg/envsubst"
	"github.com/joho/godotenv"
)

// parseEnvFile parses .env files.
//
// If explicitlySet is true, the function will return an error if the file does not exist.
// If explicitlySet is false, the function will return nil if the file does not exist.
func parseEnvFile(path string, explicitlySet bool) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if explicitlySet || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s file: %w", path, err)
		}
		return nil, nil
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s file: %w", path, err)
	}

	return vars, nil
}

func parseOSVariables() (map[string]string, error) {
	env := os.Environ()
	buf := bytes.NewBufferString(strings.Join(env, "\n"))
	buf.WriteString("\n")

	vars, err := godotenv.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OS environment variables: %w", err)
	}

	return vars, nil
}

// filterVariables keeps the BRAIN_VAR_ prefixed variables, with the prefix
// stripped, and returns the rest separately.
func filterVariables(vars map[string]string) (map[string]string, map[string]string) {
	brainVars := make(map[string]string)
	otherVars := make(map[string]string)

	for key, value := range vars {
		if name, ok := strings.CutPrefix(key, EnvVarPrefix); ok {
			brainVars[name] = value
		} else {
			otherVars[key] = value
		}
	}

	return brainVars, otherVars
}

// Variables resolves the substitution variables in precedence order:
// 1. The manifest's variables section (lowest priority)
// 2. The env file, every key (medium priority)
// 3. BRAIN_VAR_ prefixed OS environment variables (highest priority)
func Variables(defined map[string]string, envFile string, explicitlySet bool) (map[string]string, error) {
	variables := make(map[string]string)

	if err := mergo.Merge(&variables, defined); err != nil {
		return nil, fmt.Errorf("failed to merge manifest variables: %w", err)
	}

	fromFile, err := parseEnvFile(envFile, explicitlySet)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&variables, fromFile, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge env file variables: %w", err)
	}

	osEnvVars, err := parseOSVariables()
	if err != nil {
		return nil, err
	}
	fromOS, _ := filterVariables(osEnvVars)
	if err := mergo.Merge(&variables, fromOS, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge OS environment variables: %w", err)
	}

	return variables, nil
}

// SubstituteVariables replaces ${VAR} references in data. Unknown variables
// expand to the empty string; ${VAR:=default} and friends are supported.
func SubstituteVariables(data []byte, variables map[string]string) ([]byte, error) {
	content, err := envsubst.Eval(string(data), func(s string) (string, bool) {
		v, ok := variables[s]
		return v, ok
	})
	if err != nil {
		return nil, fmt.Errorf("failed to substitute variables: %w", err)
	}
	return []byte(content), nil
}
