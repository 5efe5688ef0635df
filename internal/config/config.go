// Package config parses the CLI flags and optional devlm.env file that
// configure an agent run (spec §6 External interfaces).
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
)

// Config is every externally-configurable setting for one agent run.
type Config struct {
	Mode        string // "test" or "generate"
	Frontend    bool
	Model       string
	Source      string // "anthropic", "gcloud", or "openai"
	APIKey      string
	ProjectID   string
	Region      string
	Server      string
	ProjectPath string
	Task        string
	WriteMode   string // "direct" or "diff"
	DebugPrompt bool
}

const envFileName = "devlm.env"

// Parse parses args (normally os.Args[1:]) with devlm.env in workingDir
// seeding defaults that CLI flags can override (spec §6: "CLI wins over
// env file").
func Parse(args []string, workingDir string) (Config, error) {
	env, err := loadEnvFile(workingDir)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("devlm", flag.ContinueOnError)
	cfg := Config{}

	fs.StringVar(&cfg.Mode, "mode", env["MODE"], "agent mode: test or generate (required)")
	fs.BoolVar(&cfg.Frontend, "frontend", env["FRONTEND"] == "true", "enable the UI testing add-on")
	fs.StringVar(&cfg.Model, "model", env["MODEL"], "model name")
	fs.StringVar(&cfg.Source, "source", orDefault(env["SOURCE"], "anthropic"), "provider: anthropic, gcloud, or openai")
	fs.StringVar(&cfg.APIKey, "api-key", env["API_KEY"], "provider API key")
	fs.StringVar(&cfg.ProjectID, "project-id", env["PROJECT_ID"], "gcloud project id")
	fs.StringVar(&cfg.Region, "region", env["REGION"], "gcloud region")
	fs.StringVar(&cfg.Server, "server", env["SERVER"], "openai-compatible base URL")
	fs.StringVar(&cfg.ProjectPath, "project-path", orDefault(env["PROJECT_PATH"], "."), "project checkout root")
	fs.StringVar(&cfg.Task, "task", env["TASK"], "task description; skips the interactive prompt")
	fs.StringVar(&cfg.WriteMode, "write-mode", orDefault(env["WRITE_MODE"], "diff"), "edit engine mode: direct or diff")
	fs.BoolVar(&cfg.DebugPrompt, "debug-prompt", env["DEBUG_PROMPT"] == "true", "dump every prompt/response to the agent home")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Mode != "test" && cfg.Mode != "generate" {
		return Config{}, fmt.Errorf("config: --mode must be %q or %q, got %q", "test", "generate", cfg.Mode)
	}
	if cfg.WriteMode != "direct" && cfg.WriteMode != "diff" {
		return Config{}, fmt.Errorf("config: --write-mode must be %q or %q, got %q", "direct", "diff", cfg.WriteMode)
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// loadEnvFile reads a simple KEY=VALUE file line by line. Blank lines and
// lines starting with '#' are skipped; values are not shell-expanded or
// quote-aware beyond trimming a single pair of surrounding quotes, unlike a
// full dotenv implementation — sufficient for the flat config this module
// needs.
func loadEnvFile(dir string) (map[string]string, error) {
	out := make(map[string]string)
	path := dir + string(os.PathSeparator) + envFileName

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", envFileName, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", envFileName, err)
	}
	return out, nil
}
