// Package config loads the analyzer's flat key-space-value
// configuration file, grounded on original_source/src/config.c's
// strtok-based line parser and required-field sanity check, and its
// XDG-style search path.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const appName = "jpamb"

// Config is the parsed configuration file: the required identification
// fields, the optional for_science flag, and the two filesystem roots
// the decompile and method-source collaborators read from.
type Config struct {
	Name                string
	Version             string
	Group               string
	Tags                string
	ForScience          bool
	JpambSourcePath     string
	JpambDecompiledPath string
}

var requiredKeys = []string{"name", "version", "group", "tags", "jpamb_source_path", "jpamb_decompiled_path"}

// DefaultPath returns "$XDG_CONFIG_HOME/jpamb/jpamb.conf", falling back
// to "$HOME/.config/jpamb/jpamb.conf" when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".conf"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory for default config path")
	}
	return filepath.Join(home, ".config", appName, appName+".conf"), nil
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %q", path)
	}
	defer f.Close()

	fields := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		fields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %q", path)
	}

	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			return nil, errors.Errorf("config file %q missing required key %q", path, k)
		}
	}

	return &Config{
		Name:                fields["name"],
		Version:             fields["version"],
		Group:               fields["group"],
		Tags:                fields["tags"],
		ForScience:          fields["for_science"] == "1" || fields["for_science"] == "true",
		JpambSourcePath:     fields["jpamb_source_path"],
		JpambDecompiledPath: fields["jpamb_decompiled_path"],
	}, nil
}

// splitKeyValue tokenizes one "key value" line the same way set_field's
// strtok(line, " ") pair does: the key is the first whitespace-delimited
// token, the value the second; anything further on the line is ignored.
func splitKeyValue(line string) (key, value string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
