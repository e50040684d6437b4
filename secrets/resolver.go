// Package secrets resolves credential references so raw secrets can stay
// out of configuration files.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Resolve turns a credential reference into its value. Supported forms:
//
//	env:NAME   — read from the environment, fail-closed on unset or empty
//	file:PATH  — read file contents, trimmed
//	anything else — treated as a literal value
func Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}

	if name, ok := strings.CutPrefix(ref, "env:"); ok {
		name = strings.TrimSpace(name)
		val, found := os.LookupEnv(name)
		if !found {
			return "", fmt.Errorf("secret not found (env var %q is not set)", name)
		}
		if strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("secret is empty (env var %q)", name)
		}
		return strings.TrimSpace(val), nil
	}

	if path, ok := strings.CutPrefix(ref, "file:"); ok {
		path = strings.TrimSpace(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read secret file: %w", err)
		}
		val := strings.TrimSpace(string(data))
		if val == "" {
			return "", fmt.Errorf("secret file %q is empty", path)
		}
		return val, nil
	}

	return ref, nil
}
