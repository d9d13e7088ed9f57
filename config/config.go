// Package config reads config.yaml. Every key is optional; a missing file
// means the defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sim0n-says/AnalyseFauneQuebec/limiter"
	"github.com/sim0n-says/AnalyseFauneQuebec/parse/faunequebec"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	LogLevel    string           `yaml:"logLevel"`
	LogFile     string           `yaml:"logFile"`
	Fetcher     Fetcher          `yaml:"fetcher"`
	Site        faunequebec.Site `yaml:"site"`
	Output      Output           `yaml:"output"`
	Storage     Storage          `yaml:"storage"`
	Synthesizer Synthesizer      `yaml:"synthesizer"`
}

type Fetcher struct {
	Type      string                `yaml:"type"` // base or browser
	UserAgent string                `yaml:"userAgent"`
	Cookie    string                `yaml:"cookie"`
	Timeout   int                   `yaml:"timeout"` // milliseconds
	Retries   int                   `yaml:"retries"`
	Proxy     []string              `yaml:"proxy"`
	Limits    []limiter.LimitConfig `yaml:"limits"`
}

type Output struct {
	Path            string `yaml:"path"`
	Root            string `yaml:"root"`
	CheckpointEvery int    `yaml:"checkpointEvery"`
	OnError         string `yaml:"onError"` // abort or skip
	WorkCount       int    `yaml:"workCount"`
}

// Storage enables the SQL mirror when SQLDriver is set.
type Storage struct {
	SQLDriver  string `yaml:"sqlDriver"`
	SQLURL     string `yaml:"sqlURL"`
	BatchCount int    `yaml:"batchCount"`
}

type Synthesizer struct {
	Input       string  `yaml:"input"`
	Output      string  `yaml:"output"`
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"apiKeyEnv"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
	Timeout     int     `yaml:"timeout"` // milliseconds
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Fetcher: Fetcher{
			Type:      "browser",
			UserAgent: faunequebec.UserAgent,
			Timeout:   10000,
		},
		Site: faunequebec.DefaultSite(),
		Output: Output{
			Path:      "faune_info.xml",
			Root:      "faune",
			OnError:   "abort",
			WorkCount: 1,
		},
		Storage: Storage{
			BatchCount: 20,
		},
		Synthesizer: Synthesizer{
			Input:       "faune_info.xml",
			Output:      "faune_synthétisée.xml",
			Endpoint:    "https://api.together.xyz/v1",
			Model:       "deepseek-ai/DeepSeek-V3",
			APIKeyEnv:   "TOGETHER_API_KEY",
			MaxTokens:   500,
			Temperature: 0.2,
			Timeout:     60000,
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Output.Path == "" {
		return errors.New("output.path is empty")
	}
	if c.Output.WorkCount < 1 {
		return fmt.Errorf("output.workCount must be at least 1, got %d", c.Output.WorkCount)
	}
	if c.Output.CheckpointEvery < 0 {
		return fmt.Errorf("output.checkpointEvery is negative: %d", c.Output.CheckpointEvery)
	}
	switch c.Storage.SQLDriver {
	case "", "mysql", "sqlite":
	default:
		return fmt.Errorf("storage.sqlDriver %q is not mysql or sqlite", c.Storage.SQLDriver)
	}
	return nil
}

func (f Fetcher) TimeoutDuration() time.Duration {
	return time.Duration(f.Timeout) * time.Millisecond
}

func (s Synthesizer) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Millisecond
}
