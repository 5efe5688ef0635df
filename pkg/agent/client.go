// Package agent implements the control loop (spec §4.6): it owns the
// iteration store, lockout table, last-inspected set, and command-suggestion
// state, and drives the LLM transport, prompt assembler, and action
// dispatcher through one iteration at a time.
package agent

import (
	"fmt"

	"github.com/jg-phare/devlm/internal/config"
	"github.com/jg-phare/devlm/pkg/llm"
)

// NewClient builds the LLM transport variant named by cfg.Source (spec
// §4.1): "anthropic" (hosted chat API), "gcloud" (vendor-gateway API), or
// "openai" (OpenAI-compatible endpoint).
func NewClient(cfg config.Config, debugger llm.Debugger, operator llm.Operator) (llm.Client, error) {
	switch cfg.Source {
	case "", "anthropic":
		return llm.NewHostedClient(llm.HostedConfig{
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Debugger: debugger,
			Operator: operator,
		}), nil
	case "gcloud":
		return llm.NewVendorGatewayClient(llm.VendorGatewayConfig{
			ProjectID: cfg.ProjectID,
			Region:    cfg.Region,
			Model:     cfg.Model,
			Token:     cfg.APIKey,
			Debugger:  debugger,
			Operator:  operator,
		}), nil
	case "openai":
		return llm.NewOpenAICompatClient(llm.OpenAICompatConfig{
			BaseURL:  cfg.Server,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Debugger: debugger,
			Operator: operator,
		}), nil
	default:
		return nil, fmt.Errorf("agent: unknown --source %q", cfg.Source)
	}
}
