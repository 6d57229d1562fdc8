package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	domaincfg "graphcore/domain/config"
	"graphcore/domain/services/clustering"
	"graphcore/domain/services/layout"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableCORS    bool `yaml:"enable_cors"`

	// Graph limits
	MaxNodes        int `yaml:"max_nodes"`
	MaxLinksPerNode int `yaml:"max_links_per_node"`

	// Similarity detection
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// Layout defaults
	LayoutWidth  float64 `yaml:"layout_width"`
	LayoutHeight float64 `yaml:"layout_height"`
	LayoutSeed   int64   `yaml:"layout_seed"`

	// Clustering defaults
	MinClusterSize int `yaml:"min_cluster_size"`
	MaxClusters    int `yaml:"max_clusters"`
}

// LoadConfig loads configuration from environment variables, optionally
// overlaid on a YAML file named by CONFIG_FILE. Environment wins over file,
// file wins over defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:       ":8080",
		Environment:         "development",
		LogLevel:            "info",
		EnableMetrics:       true,
		EnableCORS:          true,
		MaxNodes:            10000,
		MaxLinksPerNode:     500,
		SimilarityThreshold: 0.3,
		LayoutWidth:         1600,
		LayoutHeight:        1200,
		MinClusterSize:      2,
		MaxClusters:         20,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	cfg.MaxNodes = getEnvInt("MAX_NODES", cfg.MaxNodes)
	cfg.MaxLinksPerNode = getEnvInt("MAX_LINKS_PER_NODE", cfg.MaxLinksPerNode)
	cfg.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	cfg.LayoutWidth = getEnvFloat("LAYOUT_WIDTH", cfg.LayoutWidth)
	cfg.LayoutHeight = getEnvFloat("LAYOUT_HEIGHT", cfg.LayoutHeight)
	cfg.LayoutSeed = int64(getEnvInt("LAYOUT_SEED", int(cfg.LayoutSeed)))
	cfg.MinClusterSize = getEnvInt("MIN_CLUSTER_SIZE", cfg.MinClusterSize)
	cfg.MaxClusters = getEnvInt("MAX_CLUSTERS", cfg.MaxClusters)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if c.MaxNodes <= 0 {
		return fmt.Errorf("MAX_NODES must be positive, got %d", c.MaxNodes)
	}
	if c.MaxLinksPerNode <= 0 {
		return fmt.Errorf("MAX_LINKS_PER_NODE must be positive, got %d", c.MaxLinksPerNode)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be within [0, 1], got %g", c.SimilarityThreshold)
	}
	if c.LayoutWidth <= 0 || c.LayoutHeight <= 0 {
		return fmt.Errorf("layout viewport must be positive, got %gx%g", c.LayoutWidth, c.LayoutHeight)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Domain builds the domain-level limits from the loaded configuration
func (c *Config) Domain() *domaincfg.DomainConfig {
	d := domaincfg.DefaultDomainConfig()
	d.MaxNodes = c.MaxNodes
	d.MaxLinksPerNode = c.MaxLinksPerNode
	d.SimilarityThreshold = c.SimilarityThreshold
	return d
}

// LayoutDefaults builds the baseline layout configuration; handlers overlay
// per-request parameters on top of it
func (c *Config) LayoutDefaults() layout.Config {
	cfg := layout.DefaultConfig(layout.AlgorithmForce)
	cfg.Width = c.LayoutWidth
	cfg.Height = c.LayoutHeight
	cfg.Seed = c.LayoutSeed
	return cfg
}

// ClusteringDefaults builds the baseline clustering configuration
func (c *Config) ClusteringDefaults() clustering.Config {
	return clustering.Config{
		Algorithm:      clustering.AlgorithmLouvain,
		MinClusterSize: c.MinClusterSize,
		MaxClusters:    c.MaxClusters,
		Seed:           c.LayoutSeed,
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat gets an environment variable as a float with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
