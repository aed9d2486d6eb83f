package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name.
	DefaultBaseDir = ".mindbase"
	// DefaultConfigFile is the default configuration filename.
	DefaultConfigFile = "config.yaml"
)

// Config is the on-disk configuration for a mindbase store: where the
// store lives, which agent label is used by default for new claims, and
// which agents' claims are trusted as the ground-symbol corpus.
type Config struct {
	// AppName is the application name, used to namespace the config
	// directory (normally "mindbase").
	AppName string `yaml:"-"`

	// StoreDir is the directory containing the badger-backed KV trees.
	// Defaults to <config dir>/data if empty, or to a "store" directory
	// beside the config file when it was loaded from a custom path.
	StoreDir string `yaml:"store_dir,omitempty"`

	// DefaultAgent is an agent label kept in the config file. Opening a
	// MindBase does not consult it: claims are signed with the
	// KeyManager's current agent.
	DefaultAgent string `yaml:"default_agent,omitempty"`

	// GroundAgents is the list of hex-encoded agent ids (AgentId.String
	// form) whose claims are trusted as the ground-symbol corpus, seeded
	// into MindBase.GroundSymbolAgents at open time.
	GroundAgents []string `yaml:"ground_agents,omitempty"`

	// configPath is the path to the config file.
	configPath string
}

// LoadConfig loads or creates configuration for the named application.
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path.
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	var configPath, dataDir string

	if customPath != "" {
		configPath = customPath
		dataDir = filepath.Join(filepath.Dir(configPath), "store")
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	} else {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		if err := paths.EnsureAppDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		configPath = paths.ConfigFile()
		dataDir = paths.DataDir()
	}

	cfg := &Config{
		AppName:    appName,
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			if cfg.StoreDir == "" {
				cfg.StoreDir = dataDir
			}
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.AppName = appName
	cfg.configPath = configPath
	if cfg.StoreDir == "" {
		cfg.StoreDir = dataDir
	}

	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path.
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddGroundAgent appends an agent label to the ground-agent list if not
// already present, and persists the change.
func (c *Config) AddGroundAgent(label string) error {
	for _, g := range c.GroundAgents {
		if g == label {
			return nil
		}
	}
	c.GroundAgents = append(c.GroundAgents, label)
	return c.Save()
}

// MaskKey masks a sensitive string (an agent label or key fingerprint) for
// display, keeping only the first and last four characters.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
