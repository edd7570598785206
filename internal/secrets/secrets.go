// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files
// and enforces the credentials the pipeline cannot start without.
// Each file in the directory represents one secret: the filename is the
// environment variable name and the file contents (trimmed) are the value.
//
// Supported key files: GEMINI_API_KEY, BRIGHTDATA_SERP_API_KEY.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvGeminiKey is the environment variable holding the generative-model
// credential.
const EnvGeminiKey = "GEMINI_API_KEY"

// EnvBrightdataKey is the environment variable holding the search-proxy
// credential.
const EnvBrightdataKey = "BRIGHTDATA_SERP_API_KEY"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply sets each loaded secret as an environment variable unless the
// variable is already set — the process environment wins over the secrets
// directory.
func Apply(secrets map[string]string) {
	for name, value := range secrets {
		if os.Getenv(name) == "" {
			os.Setenv(name, value)
		}
	}
}

// Require returns the values of the named environment variables, erroring on
// the first one that is missing or blank. The pipeline calls this at startup
// with the two API credentials; a missing credential is the one fatal
// configuration error the system has.
func Require(names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return nil, fmt.Errorf("%s not set: provide it in the environment or a .secrets/ file", name)
		}
		values[name] = v
	}
	return values, nil
}
