package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCategories are the labels the category matcher scores queries against.
// "Status" and "Order ID" are order-lookup pseudo-categories.
var DefaultCategories = []string{
	"Fridges",
	"TVs",
	"Mobile Phones",
	"Digital Cameras",
	"Fridge Freezers",
	"Dishwashers",
	"CPUs",
	"Freezers",
	"Washing Machines",
	"Microwaves",
	"Status",
	"Order ID",
}

const (
	DefaultConfidenceThreshold = 0.25
	DefaultMaxResults          = 10000
	DefaultBatchSize           = 50
	DefaultPacing              = time.Second
	DefaultTemperature         = 0.7
)

// Embedding widths of the default models per provider.
const (
	openAIVectorDim = 1536
	ollamaVectorDim = 768
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

type LLMConfig struct {
	Provider            string  `yaml:"provider"`
	BaseURL             string  `yaml:"base_url"`
	APIKey              string  `yaml:"api_key"`
	Model               string  `yaml:"model"`
	MaxTokens           int     `yaml:"max_tokens"`
	ClassifierMaxTokens int     `yaml:"classifier_max_tokens"`
	Temperature         float64 `yaml:"temperature"`
}

type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	// RateLimit caps embedding requests per second. Zero disables it.
	RateLimit float64 `yaml:"rate_limit"`
}

type StoreConfig struct {
	Type          string `yaml:"type"`
	URL           string `yaml:"url"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	VectorDim     int    `yaml:"vector_dim"`
	IndexLists    int    `yaml:"index_lists"`
}

type IngestConfig struct {
	BatchSize int           `yaml:"batch_size"`
	Pacing    time.Duration `yaml:"pacing"`
}

type SearchConfig struct {
	ConfidenceThreshold float64  `yaml:"confidence_threshold"`
	MaxResults          int      `yaml:"max_results"`
	Categories          []string `yaml:"categories"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	UploadDir string `yaml:"upload_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/shopsearch/config.yaml"),
			"/etc/shopsearch/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Settings where zero is meaningful are preset so an explicit zero in
	// the file survives.
	config := newConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(config)
	applyDefaults(config)

	return config, nil
}

func getDefaultConfig() (*Config, error) {
	config := newConfig()
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func newConfig() *Config {
	config := &Config{}
	config.LLM.Temperature = DefaultTemperature
	config.Ingest.Pacing = DefaultPacing
	config.Search.ConfidenceThreshold = DefaultConfidenceThreshold
	return config
}

// applyDefaults fills settings left empty. Zero is never a valid value
// for any of them.
func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = "openai"
	}
	if config.LLM.Model == "" {
		if config.LLM.Provider == "ollama" {
			config.LLM.Model = "mistral"
		} else {
			config.LLM.Model = "gpt-4o-mini"
		}
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 500
	}
	if config.LLM.ClassifierMaxTokens == 0 {
		config.LLM.ClassifierMaxTokens = 10
	}
	if config.LLM.BaseURL == "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = config.LLM.Provider
	}
	if config.Embedding.Model == "" {
		if config.Embedding.Provider == "ollama" {
			config.Embedding.Model = "nomic-embed-text:latest"
		} else {
			config.Embedding.Model = "text-embedding-3-small"
		}
	}
	if config.Embedding.APIKey == "" {
		config.Embedding.APIKey = config.LLM.APIKey
	}
	if config.Embedding.BaseURL == "" && config.Embedding.Provider == config.LLM.Provider {
		config.Embedding.BaseURL = config.LLM.BaseURL
	}

	if config.Store.Type == "" {
		config.Store.Type = "pgvector"
	}
	if config.Store.RedisAddr == "" {
		config.Store.RedisAddr = "localhost:6379"
	}
	if config.Store.VectorDim == 0 {
		if config.Embedding.Provider == "ollama" {
			config.Store.VectorDim = ollamaVectorDim
		} else {
			config.Store.VectorDim = openAIVectorDim
		}
	}
	if config.Store.IndexLists == 0 {
		config.Store.IndexLists = 100
	}

	if config.Ingest.BatchSize == 0 {
		config.Ingest.BatchSize = DefaultBatchSize
	}

	if config.Search.MaxResults == 0 {
		config.Search.MaxResults = DefaultMaxResults
	}
	if len(config.Search.Categories) == 0 {
		config.Search.Categories = append([]string(nil), DefaultCategories...)
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8001"
	}
	if config.Server.UploadDir == "" {
		config.Server.UploadDir = "./data"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && config.LLM.Provider != "ollama" {
		config.LLM.BaseURL = baseURL
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Store.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Store.RedisAddr = addr
	}
}
