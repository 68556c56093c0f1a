package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		BodyLimitMB int `yaml:"bodyLimitMB"`
	} `yaml:"server"`

	OpenAI struct {
		APIKey    string `yaml:"apiKey"`
		Model     string `yaml:"model"`
		ChatModel string `yaml:"chatModel"`
	} `yaml:"openai"`

	Apple struct {
		SharedSecret      string `yaml:"sharedSecret"`
		ProductionURL     string `yaml:"productionURL"`
		SandboxURL        string `yaml:"sandboxURL"`
		LifetimeProductID string `yaml:"lifetimeProductID"`
	} `yaml:"apple"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load reads config.yaml when present, then applies environment overrides
// and defaults. Secrets normally arrive via the environment so the yaml
// file can be committed without them.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only deployment
	default:
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("APPLE_SHARED_SECRET"); v != "" {
		cfg.Apple.SharedSecret = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.BodyLimitMB == 0 {
		c.Server.BodyLimitMB = 50
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.Apple.LifetimeProductID == "" {
		c.Apple.LifetimeProductID = "com.trustlit.lifetime"
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
}

// Validate reports fatal configuration gaps. Called once at startup; a
// service missing either secret cannot function and must not start.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai api key not configured (set OPENAI_API_KEY)")
	}
	if c.Apple.SharedSecret == "" {
		return fmt.Errorf("apple shared secret not configured (set APPLE_SHARED_SECRET)")
	}
	return nil
}
