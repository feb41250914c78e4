package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	App        AppConfig                  `json:"app"`
	Providers  map[string]ProviderConfig  `json:"providers"`
	Connectors map[string]ConnectorConfig `json:"connectors"`
	Policy     PolicyConfig               `json:"policy"`
	Memory     MemoryConfig               `json:"memory"`
}

type AppConfig struct {
	Name       string `json:"name"`
	PromptsDir string `json:"prompts_dir,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

// ConnectorConfig describes one MCP server process to spawn.
type ConnectorConfig struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Enabled bool     `json:"enabled"`
}

// PolicyConfig lists tools the agent must never offer to the planner.
type PolicyConfig struct {
	DeniedTools    []string `json:"denied_tools,omitempty"`
	DeniedPatterns []string `json:"denied_patterns,omitempty"`
}

type MemoryConfig struct {
	Path string `json:"path,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}

// GetDefaultProvider returns the first enabled provider.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}
