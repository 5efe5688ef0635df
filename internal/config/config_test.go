package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_CLIWinsOverEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, envFileName)
	if err := os.WriteFile(envFile, []byte("MODE=generate\nMODEL=from-env\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Parse([]string{"--mode=test", "--model=from-cli"}, dir)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Mode != "test" {
		t.Errorf("Mode = %q, want CLI flag to win (test)", cfg.Mode)
	}
	if cfg.Model != "from-cli" {
		t.Errorf("Model = %q, want CLI flag to win (from-cli)", cfg.Model)
	}
}

func TestParse_EnvFileSeedsDefaultsWhenNoFlag(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, envFileName)
	if err := os.WriteFile(envFile, []byte("MODE=generate\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Parse(nil, dir)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Mode != "generate" {
		t.Errorf("Mode = %q, want value from devlm.env (generate)", cfg.Mode)
	}
}

func TestParse_DefaultsAppliedWithNoEnvFile(t *testing.T) {
	cfg, err := Parse([]string{"--mode=test"}, t.TempDir())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Source != "anthropic" {
		t.Errorf("Source = %q, want default anthropic", cfg.Source)
	}
	if cfg.WriteMode != "diff" {
		t.Errorf("WriteMode = %q, want default diff", cfg.WriteMode)
	}
	if cfg.ProjectPath != "." {
		t.Errorf("ProjectPath = %q, want default .", cfg.ProjectPath)
	}
}

func TestParse_MissingModeRejected(t *testing.T) {
	if _, err := Parse(nil, t.TempDir()); err == nil {
		t.Fatal("expected an error when --mode is not provided and devlm.env has none either")
	}
}

func TestParse_InvalidWriteModeRejected(t *testing.T) {
	if _, err := Parse([]string{"--mode=test", "--write-mode=yolo"}, t.TempDir()); err == nil {
		t.Fatal("expected an error for an invalid --write-mode value")
	}
}

func TestParse_QuotedEnvValueIsUnquoted(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, envFileName)
	if err := os.WriteFile(envFile, []byte(`MODE="test"` + "\n" + `TASK='add a feature'` + "\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Parse(nil, dir)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Task != "add a feature" {
		t.Errorf("Task = %q, want unquoted value", cfg.Task)
	}
}
