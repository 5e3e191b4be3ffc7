package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envOverrides are the environment variables that override file settings.
// Empty values leave the file setting untouched.
type envOverrides struct {
	GigaChatAuthKey  string `envconfig:"GIGACHAT_API_KEY"`
	GigaChatScope    string `envconfig:"GIGACHAT_SCOPE"`
	YandexAPIKey     string `envconfig:"YANDEX_API_KEY"`
	YandexFolderID   string `envconfig:"YANDEX_FOLDER_ID"`
	PerplexityAPIKey string `envconfig:"PERPLEXITY_API_KEY"`
	DefaultProvider  string `envconfig:"DEFAULT_LLM_PROVIDER"`
	DatabasePath     string `envconfig:"PLAYGROUND_DB_PATH"`
	Addr             string `envconfig:"PLAYGROUND_ADDR"`
	LogLevel         string `envconfig:"PLAYGROUND_LOG_LEVEL"`
}

// Loader handles loading configuration from files and the environment.
type Loader struct {
	configDir string
	envFile   string
}

// NewLoader creates a new configuration loader.
// If configDir is empty, it defaults to ~/.playground.
func NewLoader(configDir string) (*Loader, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".playground")
	}

	return &Loader{configDir: configDir, envFile: ".env"}, nil
}

// WithEnvFile sets the dotenv file read before environment overrides are applied.
// An empty path disables dotenv loading.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load builds the configuration from defaults, the YAML file (the default
// location when configPath is empty), the dotenv file and the environment,
// in that order, and validates the result. A missing YAML file is not an error.
func (l *Loader) Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = l.DefaultConfigPath()
	}

	cfg := NewDefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Database.Path = ExpandHome(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	if l.envFile != "" {
		// Existing environment variables win over the dotenv file.
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", l.envFile, err)
		}
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Providers.GigaChat.AuthKey, env.GigaChatAuthKey)
	set(&cfg.Providers.GigaChat.Scope, env.GigaChatScope)
	set(&cfg.Providers.YandexGPT.APIKey, env.YandexAPIKey)
	set(&cfg.Providers.YandexGPT.FolderID, env.YandexFolderID)
	set(&cfg.Providers.Perplexity.APIKey, env.PerplexityAPIKey)
	set(&cfg.Routing.DefaultProvider, strings.ToLower(env.DefaultProvider))
	set(&cfg.Database.Path, env.DatabasePath)
	set(&cfg.Server.Addr, env.Addr)
	set(&cfg.Logging.Level, strings.ToLower(env.LogLevel))

	return nil
}

// Save saves configuration to the specified file or default location.
func (l *Loader) Save(cfg *Config, configPath string) error {
	if configPath == "" {
		configPath = l.DefaultConfigPath()
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# Playground Configuration
# Credentials may also be supplied through the environment or a .env file.
#
`
	content := header + string(data)

	// Credentials live in this file, so keep it private.
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigDir returns the configuration directory path.
func (l *Loader) ConfigDir() string {
	return l.configDir
}

// DefaultConfigPath returns the default configuration file path.
func (l *Loader) DefaultConfigPath() string {
	return filepath.Join(l.configDir, "config.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
