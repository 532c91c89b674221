package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFile = "tweetgraph.yml"

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendBadger    = "badger"
)

// Backends lists the supported store backends.
var Backends = []string{BackendFirestore, BackendBadger}

// LogLevels lists the accepted log levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the tweetgraph configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	GraphQL GraphQLConfig `yaml:"graphql"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Backend   string          `yaml:"backend"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Badger    BadgerConfig    `yaml:"badger"`
}

// FirestoreConfig defines how to reach Cloud Firestore.
type FirestoreConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id,omitempty"`
	DatabaseID      string `yaml:"database_id,omitempty"`
}

// BadgerConfig defines the embedded store. An empty Dir keeps data in memory.
type BadgerConfig struct {
	Dir string `yaml:"dir"`
}

// GraphQLConfig defines resolver behavior.
type GraphQLConfig struct {
	// CheckTweetAuthor makes createTweet reject a userId with no matching user.
	CheckTweetAuthor bool `yaml:"check_tweet_author"`
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 4000},
		Store: StoreConfig{
			Backend: BackendFirestore,
			Firestore: FirestoreConfig{
				CredentialsFile: "service-account.json",
			},
			Badger: BadgerConfig{
				Dir: filepath.Join(".tweetgraph", "data"),
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from path.
// Returns default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Values absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if !contains(Backends, c.Store.Backend) {
		return fmt.Errorf("invalid store backend: %q (must be %s)", c.Store.Backend, strings.Join(Backends, ", "))
	}
	if c.Store.Backend == BackendFirestore && c.Store.Firestore.CredentialsFile == "" {
		return fmt.Errorf("store.firestore.credentials_file is required for the firestore backend")
	}
	if !contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("invalid log level: %q (must be %s)", c.Log.Level, strings.Join(LogLevels, ", "))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q (must be json, console)", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
