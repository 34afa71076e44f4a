package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for landtalk.
type Config struct {
	Data     DataConfig     `toml:"data"`
	Server   ServerConfig   `toml:"server"`
	Analysis AnalysisConfig `toml:"analysis"`
	Gemini   ProviderConfig `toml:"gemini"`
	GPT      ProviderConfig `toml:"gpt"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AnalysisConfig controls the detection pipeline. ConfidenceThreshold is a
// percentage in [0,100]; detections reporting a confidence strictly below it
// are dropped. Detections without a confidence are always kept.
type AnalysisConfig struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	RateLimit           float64 `toml:"rate_limit"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
}

// ProviderConfig configures one AI provider endpoint. The API key is read
// from the environment variable named by KeyEnv, never from the file.
type ProviderConfig struct {
	URL    string `toml:"url"`
	Model  string `toml:"model"`
	KeyEnv string `toml:"key_env"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data:   DataConfig{Dir: "data"},
		Server: ServerConfig{Host: "localhost", Port: 8080},
		Analysis: AnalysisConfig{
			ConfidenceThreshold: 50,
			RateLimit:           1.0,
			TimeoutSeconds:      120,
		},
		Gemini: ProviderConfig{
			URL:    "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
			Model:  "gemini-2.5-flash",
			KeyEnv: "GEMINI_API_KEY",
		},
		GPT: ProviderConfig{
			URL:    "https://api.openai.com/v1/chat/completions",
			Model:  "gpt-5-mini",
			KeyEnv: "OPENAI_API_KEY",
		},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.Analysis.ConfidenceThreshold < 0 || cfg.Analysis.ConfidenceThreshold > 100 {
		return nil, fmt.Errorf("confidence_threshold must be in [0,100], got %v", cfg.Analysis.ConfidenceThreshold)
	}

	return cfg, nil
}

// Provider returns the provider config for a known provider name.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	switch name {
	case "gemini":
		return c.Gemini, nil
	case "gpt":
		return c.GPT, nil
	}
	return ProviderConfig{}, fmt.Errorf("unknown AI provider %q", name)
}
