package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Canvas     CanvasConfig     `mapstructure:"canvas"`
	Publishing PublishingConfig `mapstructure:"publishing"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type CanvasConfig struct {
	Token    string `mapstructure:"token"`
	BaseURL  string `mapstructure:"base_url"`
	CourseID string `mapstructure:"course_id"`
}

type PublishingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Interval    int    `mapstructure:"interval"`
	Timezone    string `mapstructure:"timezone"`
	HistoryFile string `mapstructure:"history_file"`
}

type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load reads the config file, environment and defaults. configFile overrides
// the search paths when set.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Check if config exists, if not create skeleton
		if !ConfigExists() {
			configPath, err := TryCreateDefaultConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to create default config: %v\n", err)
			} else {
				viper.SetConfigFile(configPath)
			}
		}

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in priority order
		for _, path := range GetConfigPaths() {
			viper.AddConfigPath(filepath.Dir(path))
		}
	}

	viper.SetEnvPrefix("GRADESYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.Canvas.BaseURL = NormalizeBaseURL(config.Canvas.BaseURL)

	if config.Canvas.Token == "" {
		if token := os.Getenv("CANVAS_API_TOKEN"); token != "" {
			config.Canvas.Token = token
		} else {
			return nil, fmt.Errorf("Canvas API token is required. Please set GRADESYNC_CANVAS_TOKEN or CANVAS_API_TOKEN environment variable")
		}
	}

	if config.Publishing.HistoryFile == "" {
		config.Publishing.HistoryFile = DefaultHistoryFile(config.Canvas.BaseURL)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Registered so AutomaticEnv can fill them during Unmarshal
	v.SetDefault("canvas.token", "")
	v.SetDefault("canvas.base_url", "")
	v.SetDefault("canvas.course_id", "")
	v.SetDefault("publishing.history_file", "")

	v.SetDefault("publishing.enabled", true)
	v.SetDefault("publishing.interval", 5)
	v.SetDefault("publishing.timezone", "UTC")
	v.SetDefault("logging.file", DefaultLogFile())
	v.SetDefault("logging.level", "info")
}

// Validate checks the fields every command needs
func (c *Config) Validate() error {
	if c.Canvas.BaseURL == "" {
		return fmt.Errorf("Canvas base URL is required")
	}
	if c.Canvas.CourseID == "" {
		return fmt.Errorf("Canvas course ID is required")
	}
	if c.Publishing.Interval <= 0 {
		return fmt.Errorf("publishing interval must be positive, got %d", c.Publishing.Interval)
	}
	return nil
}

// NormalizeBaseURL ensures base_url has an https:// prefix and no trailing slash
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	return strings.TrimSuffix(baseURL, "/")
}

// DefaultHistoryFile keeps one history database per Canvas host
func DefaultHistoryFile(baseURL string) string {
	host := extractHostname(baseURL)
	if host == "" {
		host = "default"
	}
	return filepath.Join(GetConfigDir(), "history", host+".db")
}

func extractHostname(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
