package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigSkeleton represents the skeleton structure for config.yaml
type ConfigSkeleton struct {
	Canvas     CanvasSkeleton     `yaml:"canvas"`
	Publishing PublishingSkeleton `yaml:"publishing"`
	Logging    LoggingSkeleton    `yaml:"logging"`
}

type CanvasSkeleton struct {
	Token    string `yaml:"token"`
	BaseURL  string `yaml:"base_url"`
	CourseID string `yaml:"course_id"`
}

type PublishingSkeleton struct {
	Enabled     bool   `yaml:"enabled"`
	Interval    int    `yaml:"interval"`
	Timezone    string `yaml:"timezone"`
	HistoryFile string `yaml:"history_file"`
}

type LoggingSkeleton struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

func GetDefaultConfig() *ConfigSkeleton {
	return &ConfigSkeleton{
		Canvas: CanvasSkeleton{
			Token:    "",
			BaseURL:  "",
			CourseID: "",
		},
		Publishing: PublishingSkeleton{
			Enabled:  true,
			Interval: 5,
			Timezone: "UTC",
		},
		Logging: LoggingSkeleton{
			File:  DefaultLogFile(),
			Level: "info",
		},
	}
}

// DefaultLogFile is where the TUI writes its JSON log
func DefaultLogFile() string {
	return filepath.Join(GetConfigDir(), "gradesync.log")
}

// GetConfigDir returns the config directory path following the XDG Base Directory layout
func GetConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "gradesync")
	}

	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "gradesync")
}

func GetConfigPaths() []string {
	configDir := GetConfigDir()
	homeDir, _ := os.UserHomeDir()

	return []string{
		filepath.Join(configDir, "config.yaml"),
		filepath.Join(homeDir, ".gradesync", "config.yaml"),
		"/etc/gradesync/config.yaml",
	}
}

func CreateSkeletonConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer file.Close()

	header := `# gradesync configuration file
#
# This file was automatically generated. Please update it with your settings.
# Every key can be overridden with a GRADESYNC_ environment variable,
# e.g. GRADESYNC_CANVAS_COURSE_ID=101

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	node := &yaml.Node{}
	if err := node.Encode(GetDefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode skeleton: %w", err)
	}

	addComments(node)

	if err := encoder.Encode(node); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}

	return encoder.Close()
}

var fieldComments = map[string]string{
	"canvas":       "Canvas LMS configuration",
	"token":        "Canvas API access token (can also be set via GRADESYNC_CANVAS_TOKEN or CANVAS_API_TOKEN env var)",
	"base_url":     "Canvas host, e.g. canvas.example.edu (https:// is added when missing)",
	"course_id":    "Course whose grades are synced to the SIS (required)",
	"publishing":   "\nGrade publishing configuration",
	"enabled":      "Check the sync status automatically on startup (default: true)",
	"interval":     "Seconds between re-checks while a sync is running (default: 5)",
	"timezone":     "Timezone for displaying timestamps (default: UTC)\nExamples: UTC, America/Denver, Europe/London",
	"history_file": "BoltDB file recording status changes (empty: history/<canvas host>.db in the config directory)",
	"logging":      "\nLogging configuration",
	"file":         "Log file used by the TUI (CLI subcommands log to stderr)",
	"level":        "Log level: debug, info, warn, error (default: info)",
}

func addComments(node *yaml.Node) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		addComments(node.Content[0])
		return
	}
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]

		if comment, ok := fieldComments[key.Value]; ok {
			key.HeadComment = comment
		}

		if value.Kind == yaml.MappingNode {
			addComments(value)
		}
	}
}

func TryCreateDefaultConfig() (string, error) {
	defaultPath := filepath.Join(GetConfigDir(), "config.yaml")

	if err := CreateSkeletonConfig(defaultPath); err != nil {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "\nCreated default config file at: %s\n", defaultPath)
	fmt.Fprintf(os.Stderr, "\nNext steps:\n")
	fmt.Fprintf(os.Stderr, "   1. Edit the config file and set canvas.base_url and canvas.course_id\n")
	fmt.Fprintf(os.Stderr, "   2. Set your Canvas API token using one of these methods:\n")
	fmt.Fprintf(os.Stderr, "      - Edit config file (canvas.token field)\n")
	fmt.Fprintf(os.Stderr, "      - Set environment variable: export GRADESYNC_CANVAS_TOKEN=<token>\n\n")

	return defaultPath, nil
}

func ConfigExists() bool {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}
