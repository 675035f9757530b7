package tui

import "time"

// AppConfig holds configuration for the TUI application
type AppConfig struct {
	ServerURL    string
	CourseID     string
	Timezone     string
	Version      string
	Interval     time.Duration
	CheckOnStart bool
}
