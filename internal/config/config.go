package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigGetter provides access to the current configuration
type ConfigGetter func() *Config

// Config represents the complete application configuration
type Config struct {
	Trakt   TraktConfig   `yaml:"trakt" mapstructure:"trakt"`
	Plex    PlexConfig    `yaml:"plex" mapstructure:"plex"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Discord DiscordConfig `yaml:"discord" mapstructure:"discord"`
	Arrs    ArrsConfig    `yaml:"arrs" mapstructure:"arrs"`
	Sync    SyncConfig    `yaml:"sync" mapstructure:"sync"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// TraktConfig represents the Trakt API configuration
type TraktConfig struct {
	ClientID          string `yaml:"client_id" mapstructure:"client_id"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	TrendingMoviesURL string `yaml:"trending_movies_url" mapstructure:"trending_movies_url"`
	TrendingTVURL     string `yaml:"trending_tv_url" mapstructure:"trending_tv_url"`
}

// PlexConfig represents the Plex server configuration
type PlexConfig struct {
	URL              string `yaml:"base_url" mapstructure:"base_url"`
	Token            string `yaml:"token" mapstructure:"token"`
	TrendingMovies   string `yaml:"trending_movies_library" mapstructure:"trending_movies_library"`
	TrendingTV       string `yaml:"trending_tv_library" mapstructure:"trending_tv_library"`
	TimeoutSeconds   int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	InsecureSkipTLS  bool   `yaml:"insecure_skip_tls" mapstructure:"insecure_skip_tls"`
}

// PathsConfig represents the local filesystem layout
type PathsConfig struct {
	MovieFolder    string `yaml:"movie_folder_path" mapstructure:"movie_folder_path"`
	TVFolder       string `yaml:"tv_folder_path" mapstructure:"tv_folder_path"`
	MovieSymlink   string `yaml:"movie_symlink_path" mapstructure:"movie_symlink_path"`
	TVSymlink      string `yaml:"tv_symlink_path" mapstructure:"tv_symlink_path"`
	StateDir       string `yaml:"state_dir" mapstructure:"state_dir"`
	ExclusionsFile string `yaml:"exclusions_file" mapstructure:"exclusions_file"`
}

// DiscordConfig represents the Discord webhook configuration
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// ArrsConfig represents optional Radarr/Sonarr refresh targets
type ArrsConfig struct {
	RadarrInstances []ArrInstanceConfig `yaml:"radarr" mapstructure:"radarr"`
	SonarrInstances []ArrInstanceConfig `yaml:"sonarr" mapstructure:"sonarr"`
}

// ArrInstanceConfig represents a single Radarr or Sonarr instance
type ArrInstanceConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	URL     string `yaml:"url" mapstructure:"url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Enabled *bool  `yaml:"enabled" mapstructure:"enabled"`
}

// SyncConfig represents the sync pipeline configuration
type SyncConfig struct {
	MaxItems       int      `yaml:"max_items" mapstructure:"max_items"`
	Schedules      []string `yaml:"schedules" mapstructure:"schedules"`
	FixPermissions *bool    `yaml:"fix_permissions" mapstructure:"fix_permissions"`
}

// LogConfig represents logging configuration with rotation support
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`               // Log file path (empty = console only)
	Level      string `yaml:"level" mapstructure:"level"`             // Log level (debug, info, warn, error)
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // Max size in MB before rotation
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // Max age in days to keep files
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // Max number of old files to keep
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // Compress old log files
}

// DefaultConfig returns a configuration populated with defaults
func DefaultConfig() *Config {
	fixPermissions := true

	return &Config{
		Trakt: TraktConfig{
			BaseURL:           "https://api.trakt.tv",
			TrendingMoviesURL: "/movies/trending",
			TrendingTVURL:     "/shows/trending",
		},
		Plex: PlexConfig{
			TrendingMovies: "Trending Movies",
			TrendingTV:     "Trending TV",
			TimeoutSeconds: 900,
		},
		Paths: PathsConfig{
			StateDir:       "./state",
			ExclusionsFile: "./unwanted.json",
		},
		Sync: SyncConfig{
			MaxItems:       20,
			Schedules:      []string{"0 6 * * *", "0 18 * * *"},
			FixPermissions: &fixPermissions,
		},
		Log: LogConfig{
			File:       "",
			Level:      "info",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 10,
			Compress:   true,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Trakt.ClientID == "" {
		return fmt.Errorf("trakt client_id cannot be empty")
	}
	if c.Trakt.BaseURL == "" {
		return fmt.Errorf("trakt base_url cannot be empty")
	}
	if c.Plex.URL == "" {
		return fmt.Errorf("plex base_url cannot be empty")
	}
	if c.Plex.Token == "" {
		return fmt.Errorf("plex token cannot be empty")
	}
	if c.Paths.MovieFolder == "" || c.Paths.TVFolder == "" {
		return fmt.Errorf("paths movie_folder_path and tv_folder_path cannot be empty")
	}
	if c.Paths.MovieSymlink == "" || c.Paths.TVSymlink == "" {
		return fmt.Errorf("paths movie_symlink_path and tv_symlink_path cannot be empty")
	}
	if c.Paths.StateDir == "" {
		return fmt.Errorf("paths state_dir cannot be empty")
	}

	if c.Sync.MaxItems <= 0 {
		return fmt.Errorf("sync max_items must be greater than 0")
	}

	if level := c.Log.Level; level != "" {
		switch level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log.level must be one of: debug, info, warn, error")
		}
	}

	if c.Log.MaxSize < 0 {
		return fmt.Errorf("log.max_size must be non-negative")
	}
	if c.Log.MaxAge < 0 {
		return fmt.Errorf("log.max_age must be non-negative")
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be non-negative")
	}

	// Validate each arr instance
	for i, instance := range append(append([]ArrInstanceConfig{}, c.Arrs.RadarrInstances...), c.Arrs.SonarrInstances...) {
		if instance.URL == "" {
			return fmt.Errorf("arr instance %d: url cannot be empty", i)
		}
		if instance.APIKey == "" {
			return fmt.Errorf("arr instance %d: api_key cannot be empty", i)
		}
	}

	return nil
}

// GetFixPermissions returns whether source folders should be made world readable
func (c *Config) GetFixPermissions() bool {
	if c.Sync.FixPermissions == nil {
		return true
	}
	return *c.Sync.FixPermissions
}

// LoadConfig loads configuration from file and merges with defaults
func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil, fmt.Errorf("no configuration file found. Please create config.yaml or use --config flag")
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration to the given file as YAML
func SaveConfig(config *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("no config file path provided")
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
