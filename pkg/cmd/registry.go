// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/flowdeck/pkg/llm"
	"github.com/dukex/flowdeck/pkg/registry"
	"github.com/dukex/flowdeck/pkg/secrets"
)

// CollaboratorConfig locates the external services nodes talk to.
type CollaboratorConfig struct {
	OllamaURL     string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	// SecretKeyVar names the environment variable holding the vault key.
	// Secrets are read from variables prefixed with SecretPrefix.
	SecretKeyVar string
	SecretPrefix string
	HTTPTimeout  time.Duration
}

// NewCollaborators builds the HTTP client, model clients and vault. The vault
// is left out when its key variable is unset.
func NewCollaborators(config CollaboratorConfig, logger *slog.Logger) registry.Collaborators {
	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := &http.Client{Timeout: timeout}

	collaborators := registry.Collaborators{
		HTTPClient: client,
		LocalModel: llm.NewOllama(config.OllamaURL, client),
	}

	if config.OpenAIBaseURL != "" || config.OpenAIAPIKey != "" {
		collaborators.RemoteModel = llm.NewOpenAI(config.OpenAIBaseURL, config.OpenAIAPIKey, client)
	}

	if config.SecretKeyVar != "" {
		vault, err := secrets.NewAESVaultFromEnv(config.SecretKeyVar, config.SecretPrefix)
		if err != nil {
			logger.Warn("Secret vault disabled", "error", err)
		} else {
			collaborators.Vault = vault
		}
	}

	return collaborators
}

// NewRegistry registers the built-in nodes, then any node plugins found
// under pluginsPath.
func NewRegistry(log *slog.Logger, pluginsPath string, collaborators registry.Collaborators) (*registry.Registry, error) {
	reg := registry.NewRegistry(log)
	reg.RegisterDefaultNodes(collaborators)

	if pluginsPath == "" {
		return reg, nil
	}

	plugins, err := reg.LoadNodePlugins(pluginsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load node plugins: %w", err)
	}

	for _, plugin := range plugins {
		reg.RegisterNode(plugin)
	}

	return reg, nil
}
