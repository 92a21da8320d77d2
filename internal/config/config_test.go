package config

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rowlint.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	run, err := Load(write(t, "max_issues: 25\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if run.MaxIssues != 25 {
		t.Errorf("MaxIssues = %d, want 25", run.MaxIssues)
	}
	// Omitted keys keep their defaults.
	if run.Output != "text" || run.LogLevel != "info" || run.FixedPolicy != "strict" {
		t.Errorf("defaults not preserved: %+v", run)
	}
}

func TestLoad_Overrides(t *testing.T) {
	run, err := Load(write(t, "output: json\nlog_level: debug\nlang: ja\nfixed_policy: pad\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if run.Output != "json" || run.LogLevel != "debug" || run.Lang != "ja" || run.FixedPolicy != "pad" {
		t.Errorf("overrides not applied: %+v", run)
	}
}

func TestLoad_Invalid(t *testing.T) {
	for _, text := range []string{
		"output: xml\n",
		"fixed_policy: truncate\n",
		"max_issues: -1\n",
		"output: [not, a, string]\n",
	} {
		if _, err := Load(write(t, text)); err == nil {
			t.Errorf("config %q should be rejected", text)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file should be an error")
	}
}
