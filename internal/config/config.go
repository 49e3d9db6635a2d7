package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	BCHydro             BCHydroConfig `yaml:"bchydro"`
	MQTT                MQTTConfig    `yaml:"mqtt,omitempty"`
	HomeAssistant       HAConfig      `yaml:"home_assistant,omitempty"`
	PollIntervalMinutes int           `yaml:"poll_interval_minutes,omitempty"` // Default: 5
	Step1Rate           float64       `yaml:"step1_rate,omitempty"`            // Override $/kWh below threshold
	Step2Rate           float64       `yaml:"step2_rate,omitempty"`            // Override $/kWh above threshold
}

// BCHydroConfig holds the portal credentials and browser options
type BCHydroConfig struct {
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Visible  bool     `yaml:"visible,omitempty"` // Show the browser window (for debugging)
	// Cookies are written by the login command for out-of-band diagnostics
	// (e.g. replaying portal requests with curl). They are never read back;
	// the login flow always starts from the portal's login form.
	Cookies []Cookie `yaml:"cookies,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `yaml:"name"`
	Value    string  `yaml:"value"`
	Domain   string  `yaml:"domain"`
	Path     string  `yaml:"path"`
	Expires  float64 `yaml:"expires,omitempty"`
	HTTPOnly bool    `yaml:"httpOnly,omitempty"`
	Secure   bool    `yaml:"secure,omitempty"`
	SameSite string  `yaml:"sameSite,omitempty"`
}

// MQTTConfig holds the MQTT broker settings for metric publishing
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // Default: "hydroscraper"
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://yourdomain.local:5050"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.bchydro_energy_usage"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetPollInterval returns the refresh interval with a default of 5 minutes
func (c *Config) GetPollInterval() time.Duration {
	if c.PollIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.PollIntervalMinutes) * time.Minute
}

// GetTopicPrefix returns the MQTT topic prefix with a default
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "hydroscraper"
	}
	return c.MQTT.TopicPrefix
}
