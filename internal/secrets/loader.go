// Package secrets resolves secret values from files or inline configuration.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value. File takes precedence over
// Value when both are set.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret provided via configuration or flags.
	Value string
	// File points to a file containing the secret value.
	File string
}

// Load returns the resolved, trimmed secret value. An error is returned when
// neither File nor Value contain a usable secret.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}
	return secret, nil
}
