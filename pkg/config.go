package pkg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "npm-deploy.yaml"

// Config holds the optional per-project settings read from npm-deploy.yaml.
type Config struct {
	PackageManager  string   `yaml:"packageManager"`
	Registry        string   `yaml:"registry"`
	NPMRegistry     string   `yaml:"npmRegistry"`
	DevDependencies []string `yaml:"devDependencies"`
	RollupConfig    string   `yaml:"rollupConfig"`
}

func DefaultConfig() *Config {
	return &Config{
		PackageManager:  "npm",
		Registry:        DefaultRegistry,
		NPMRegistry:     DefaultNPMRegistry,
		DevDependencies: append([]string(nil), DefaultDevDependencies...),
		RollupConfig:    RollupConfigFileName,
	}
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("NPM_DEPLOY_PACKAGE_MANAGER")); v != "" {
		c.PackageManager = v
	}
	if v := strings.TrimSpace(os.Getenv("NPM_DEPLOY_REGISTRY")); v != "" {
		c.Registry = v
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.PackageManager) == "" {
		return fmt.Errorf("config: packageManager must not be empty")
	}
	if strings.TrimSpace(c.Registry) == "" {
		return fmt.Errorf("config: registry must not be empty")
	}
	if strings.TrimSpace(c.RollupConfig) == "" {
		return fmt.Errorf("config: rollupConfig must not be empty")
	}
	if len(c.DevDependencies) == 0 {
		return fmt.Errorf("config: devDependencies must not be empty")
	}
	if _, err := c.DependencySpecs(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) DependencySpecs() ([]DependencySpec, error) {
	return ParseDependencySpecs(c.DevDependencies)
}
