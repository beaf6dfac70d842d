package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Game      GameConfig      `yaml:"game"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
}

// WebSocketConfig contains WebSocket settings
type WebSocketConfig struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	SendQueueSize  int           `yaml:"send_queue_size"`
}

// GameConfig contains game-specific settings
type GameConfig struct {
	MaxPlayersPerGame int           `yaml:"max_players_per_game"`
	MinPlayersPerGame int           `yaml:"min_players_per_game"`
	CommandQueueSize  int           `yaml:"command_queue_size"`
	TradeTimeout      time.Duration `yaml:"trade_timeout"`
	StartCountdown    time.Duration `yaml:"start_countdown"`
	TurnTimeout       time.Duration `yaml:"turn_timeout"`       // zero disables auto-advance
	AbandonmentWindow time.Duration `yaml:"abandonment_window"` // all players gone this long -> game reaped
}

// DatabaseConfig contains finished-game store settings
type DatabaseConfig struct {
	Path string `yaml:"path"` // empty disables persistence
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	ShowCaller bool   `yaml:"show_caller"`
}

// SecurityConfig contains CORS settings
type SecurityConfig struct {
	FrontendURL string `yaml:"frontend_url"`
}

// Default returns the built-in configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5080,
			Environment: "development",
		},
		WebSocket: WebSocketConfig{
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			PingInterval:   25 * time.Second,
			MaxMessageSize: 8192,
			SendQueueSize:  128,
		},
		Game: GameConfig{
			MaxPlayersPerGame: 4,
			MinPlayersPerGame: 2,
			CommandQueueSize:  64,
			TradeTimeout:      60 * time.Second,
			StartCountdown:    3 * time.Second,
			TurnTimeout:       0,
			AbandonmentWindow: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvironmentOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnvironmentOverrides applies environment variable settings
func (c *Config) ApplyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &c.Server.Port)
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		c.Server.Environment = env
	}

	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		c.Security.FrontendURL = frontend
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Database.Path = dbURL
	}

	if c.Server.Environment == "development" {
		c.Logging.Level = "debug"
	}
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Server.Port)
	}

	if c.Game.MaxPlayersPerGame < c.Game.MinPlayersPerGame {
		return fmt.Errorf("max players (%d) must be >= min players (%d)",
			c.Game.MaxPlayersPerGame, c.Game.MinPlayersPerGame)
	}

	if c.Game.MaxPlayersPerGame > 4 {
		return fmt.Errorf("max players per game cannot exceed 4")
	}

	return nil
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
