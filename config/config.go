package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string          `mapstructure:"port"`
	ArchiveDir      string          `mapstructure:"archive_dir"`
	OpenAIConfig    OpenAIConfig    `mapstructure:"openai"`
	GeminiConfig    GeminiConfig    `mapstructure:"gemini"`
	DocumentIndex   WeaviateConfig  `mapstructure:"document_index"`
	HubIndex        WeaviateConfig  `mapstructure:"hub_index"`
	MongoConfig     MongoConfig     `mapstructure:"mongo"`
	ChunkingConfig  ChunkingConfig  `mapstructure:"chunking"`
	RetrievalConfig RetrievalConfig `mapstructure:"retrieval"`
}

type OpenAIConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"OPENAI_API_KEY"`
	ChatModel          string `mapstructure:"chat_model"`
	EmbeddingModel     string `mapstructure:"embedding_model"`
	EmbeddingDimension int    `mapstructure:"embedding_dimension"`
}

type GeminiConfig struct {
	APIKeys []string `mapstructure:"GEMINI_API_KEYS"`
	Model   string   `mapstructure:"model"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
	Class  string `mapstructure:"class"`
}

type MongoConfig struct {
	URI      string `mapstructure:"MONGODB_URI"`
	Database string `mapstructure:"database"`
}

type ChunkingConfig struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
	MinChunkSize int `mapstructure:"min_chunk_size"`
	Overlap      int `mapstructure:"overlap"`
}

type RetrievalConfig struct {
	TopDocuments int  `mapstructure:"top_documents"`
	TopHub       int  `mapstructure:"top_hub"`
	UseHub       bool `mapstructure:"use_hub"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables for secrets
	v.BindEnv("openai.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("gemini.GEMINI_API_KEYS", "GEMINI_API_KEYS")
	v.BindEnv("document_index.api_key", "WEAVIATE_APIKEY")
	v.BindEnv("hub_index.api_key", "HUB_WEAVIATE_APIKEY")
	v.BindEnv("mongo.MONGODB_URI", "MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.ArchiveDir == "" {
		c.ArchiveDir = "archive"
	}
	if c.OpenAIConfig.EmbeddingModel == "" {
		c.OpenAIConfig.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAIConfig.EmbeddingDimension == 0 {
		c.OpenAIConfig.EmbeddingDimension = 1536
	}
	if c.DocumentIndex.Class == "" {
		c.DocumentIndex.Class = "DocumentChunk"
	}
	if c.HubIndex.Class == "" {
		c.HubIndex.Class = "HubRecord"
	}
	if c.MongoConfig.Database == "" {
		c.MongoConfig.Database = "perxia"
	}
	if c.ChunkingConfig.MaxChunkSize == 0 {
		c.ChunkingConfig.MaxChunkSize = 1500
	}
	if c.ChunkingConfig.MinChunkSize == 0 {
		c.ChunkingConfig.MinChunkSize = 200
	}
	if c.ChunkingConfig.Overlap == 0 {
		c.ChunkingConfig.Overlap = 100
	}
	if c.RetrievalConfig.TopDocuments == 0 {
		c.RetrievalConfig.TopDocuments = 5
	}
	if c.RetrievalConfig.TopHub == 0 {
		c.RetrievalConfig.TopHub = 5
	}
}
