package providers

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"modelcatalog/internal/catalog"
)

// FileConfig is the on-disk list of extra OpenAI-compatible providers.
//
//	providers:
//	  - name: together
//	    display_name: Together AI
//	    base_url: https://api.together.xyz/v1
//	    defaults:
//	      - id: meta-llama/Llama-3-70b-chat-hf
type FileConfig struct {
	Providers []CompatibleConfig `yaml:"providers"`
}

// CompatibleConfig describes one OpenAI-compatible provider.
type CompatibleConfig struct {
	Name        string          `yaml:"name"`
	DisplayName string          `yaml:"display_name"`
	BaseURL     string          `yaml:"base_url"`
	ModelsPath  string          `yaml:"models_path"`
	AuthHeader  string          `yaml:"auth_header"`
	AuthPrefix  string          `yaml:"auth_prefix"`
	IDFilter    string          `yaml:"id_filter"`
	RequiresKey *bool           `yaml:"requires_key"`
	Defaults    []DefaultConfig `yaml:"defaults"`
}

// DefaultConfig is one built-in model entry.
type DefaultConfig struct {
	ID            string `yaml:"id"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	ContextWindow int    `yaml:"context_window"`
}

// LoadFile reads and validates a provider file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes and validates provider file contents.
func ParseFile(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse provider file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and name uniqueness within the file.
func (f *FileConfig) Validate() error {
	seen := make(map[string]bool, len(f.Providers))
	for i, p := range f.Providers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("providers[%d]: %w", i, err)
		}
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if seen[name] {
			return fmt.Errorf("providers[%d]: %w: %s", i, ErrDuplicateProvider, name)
		}
		seen[name] = true
	}
	return nil
}

// Validate checks a single provider entry.
func (c CompatibleConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required for %s", c.Name)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url for %s must be an absolute http(s) URL", c.Name)
	}
	if len(c.Defaults) == 0 {
		return fmt.Errorf("at least one default model is required for %s", c.Name)
	}
	for _, d := range c.Defaults {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("default model id is required for %s", c.Name)
		}
	}
	return nil
}

func (c CompatibleConfig) keyRequired() bool {
	if c.RequiresKey == nil {
		return true
	}
	return *c.RequiresKey
}

func (c CompatibleConfig) descriptors() []catalog.ModelDescriptor {
	out := make([]catalog.ModelDescriptor, 0, len(c.Defaults))
	for _, d := range c.Defaults {
		desc := catalog.ModelDescriptor{
			ID:          strings.TrimSpace(d.ID),
			DisplayName: d.DisplayName,
			Description: d.Description,
		}
		if desc.DisplayName == "" {
			desc.DisplayName = catalog.HumanizeID(desc.ID)
		}
		if d.ContextWindow > 0 {
			desc.ContextWindow = catalog.ContextWindow(d.ContextWindow)
		}
		out = append(out, desc)
	}
	return out
}
