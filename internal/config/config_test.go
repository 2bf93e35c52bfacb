package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "jpamb.conf")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesRequiredFields(t *testing.T) {
	path := writeConf(t, `
# a comment line
name jpamb-go
version 1.0.0
group solo
tags interval fuzzing
for_science 1
jpamb_source_path /tmp/src
jpamb_decompiled_path /tmp/decompiled
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Name != "jpamb-go" || c.Version != "1.0.0" || c.Group != "solo" {
		t.Errorf("unexpected identification fields: %+v", c)
	}
	if !c.ForScience {
		t.Error("for_science 1 should parse as true")
	}
	if c.JpambSourcePath != "/tmp/src" || c.JpambDecompiledPath != "/tmp/decompiled" {
		t.Errorf("unexpected path fields: %+v", c)
	}
}

func TestLoadFailsOnMissingRequiredKey(t *testing.T) {
	path := writeConf(t, "name jpamb-go\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a config file missing required keys")
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.conf")); err == nil {
		t.Fatal("expected an error for a nonexistent config path")
	}
}

func TestDefaultPathHonorsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join("/xdg", "jpamb", "jpamb.conf"); path != want {
		t.Errorf("DefaultPath = %q, want %q", path, want)
	}
}

func TestSplitKeyValueIgnoresTrailingTokens(t *testing.T) {
	k, v, ok := splitKeyValue("tags interval fuzzing extra")
	if !ok || k != "tags" || v != "interval" {
		t.Errorf("splitKeyValue = (%q, %q, %v), want (\"tags\", \"interval\", true)", k, v, ok)
	}
	if _, _, ok := splitKeyValue("onlyonetoken"); ok {
		t.Error("a line with fewer than two tokens should not parse")
	}
}
