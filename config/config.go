package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FirebaseConfig points the app at its hosted backend. Every field falls
// back to an environment variable so deployments can avoid writing secrets
// into the config file.
type FirebaseConfig struct {
	// ProjectID is the Firebase/GCP project. Env fallback: FIREBASE_PROJECT_ID.
	ProjectID string `yaml:"project_id"`
	// CredentialsFile is the service account key path.
	// Env fallback: FIREBASE_SERVICE_ACCOUNT_KEY_PATH.
	CredentialsFile string `yaml:"credentials_file"`
	// WebAPIKey is the public web API key used for password sign-in.
	// Env fallback: FIREBASE_WEB_API_KEY.
	WebAPIKey string `yaml:"web_api_key"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the JSON API.
	Listen string `yaml:"listen"`

	// DefaultCity / DefaultState seed the browsing location for sessions
	// that have not picked one.
	DefaultCity  string `yaml:"default_city"`
	DefaultState string `yaml:"default_state"`

	// SeedEvents loads the built-in starter events into an empty store on
	// first run so a fresh install shows content.
	SeedEvents bool `yaml:"seed_events"`

	Firebase FirebaseConfig `yaml:"firebase"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		DefaultCity:  "Evansville",
		DefaultState: "IN",
		SeedEvents:   true,
	}
}

// Normalize fills missing values with defaults and applies the environment
// fallbacks for the Firebase fields.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.DefaultCity == "" {
		c.DefaultCity = "Evansville"
	}
	if c.DefaultState == "" {
		c.DefaultState = "IN"
	}
	if c.Firebase.ProjectID == "" {
		c.Firebase.ProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	}
	if c.Firebase.CredentialsFile == "" {
		c.Firebase.CredentialsFile = os.Getenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH")
	}
	if c.Firebase.WebAPIKey == "" {
		c.Firebase.WebAPIKey = os.Getenv("FIREBASE_WEB_API_KEY")
	}
}

// Load reads configuration from the given YAML path. If the file does not
// exist a default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".whenwin-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
