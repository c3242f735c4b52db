package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// LogConfig controls the global logger.
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"`
	Output     string `envconfig:"LOG_OUTPUT" default:"stderr"`
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/context_bench.log"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
}

// LLMConfig selects the chat model used by the scenarios.
type LLMConfig struct {
	Provider    string  `envconfig:"LLM_PROVIDER" default:"openai"`
	Model       string  `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	BaseURL     string  `envconfig:"LLM_BASE_URL"`
	Temperature float32 `envconfig:"LLM_TEMPERATURE" default:"0"`
	MaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"0"`

	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	DeepSeekAPIKey   string `envconfig:"DEEPSEEK_API_KEY"`
	ArkAPIKey        string `envconfig:"ARK_API_KEY"`
	OllamaHost       string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`

	AppURL   string `envconfig:"APP_URL" default:"http://localhost:3000"`
	AppTitle string `envconfig:"APP_TITLE" default:"Context Bench"`
}

// StorageConfig holds the optional external stores.
type StorageConfig struct {
	RedisURL      string `envconfig:"REDIS_URL"`
	CheckpointDir string `envconfig:"CHECKPOINT_DIR" default:".checkpoints"`
}

type Config struct {
	LogConfig     LogConfig     `envconfig:""`
	LLMConfig     LLMConfig     `envconfig:""`
	StorageConfig StorageConfig `envconfig:""`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return &config, nil
}

// BenchConfig is the structure of bench.yaml.
type BenchConfig struct {
	Paths struct {
		Scenarios string `yaml:"scenarios"`
		Configs   string `yaml:"configs"`
		Reports   string `yaml:"reports"`
		Logs      string `yaml:"logs"`
		Workspace string `yaml:"workspace"`
	} `yaml:"paths"`
	Evaluation struct {
		BaseURL        string   `yaml:"base_url"`
		Models         []string `yaml:"models"`
		MaxRetries     int      `yaml:"max_retries"`
		RequestsPerSec float64  `yaml:"requests_per_sec"`
	} `yaml:"evaluation"`
	Defaults struct {
		TimeoutSec int `yaml:"timeout_sec"`
		MaxWorkers int `yaml:"max_workers"`
	} `yaml:"defaults"`
}

// DefaultBenchConfig returns the values used when bench.yaml is absent.
func DefaultBenchConfig() *BenchConfig {
	var c BenchConfig
	c.Paths.Scenarios = "scenarios"
	c.Paths.Configs = "configs"
	c.Paths.Reports = "reports"
	c.Paths.Logs = "logs"
	c.Paths.Workspace = "workspace"
	c.Evaluation.BaseURL = "https://openrouter.ai/api/v1"
	c.Evaluation.Models = []string{
		"openai/gpt-5",
		"deepseek/deepseek-v3.2-exp",
		"x-ai/grok-4",
	}
	c.Evaluation.MaxRetries = 5
	c.Evaluation.RequestsPerSec = 2
	c.Defaults.TimeoutSec = 120
	c.Defaults.MaxWorkers = 1
	return &c
}

// LoadBenchConfig loads bench.yaml over the defaults. A missing file is not an error.
func LoadBenchConfig(filepath string) (*BenchConfig, error) {
	config := DefaultBenchConfig()

	data, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	return config, nil
}
