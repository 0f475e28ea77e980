package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName          = "rentcli"
	ConfigFileName   = "config.json"
	ZipcodesFileName = "zipcodes.csv"
	EnvFileName      = ".env"
)

// Config contains default scrape settings.
type Config struct {
	BaseURL        string `json:"base_url"`
	MaxAttempts    int    `json:"max_attempts"`
	DelaySeconds   int    `json:"delay_seconds"`
	RequireMarker  string `json:"require_marker"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	DB             string `json:"db,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        envString("RENTCLI_BASE_URL", "https://www.zillow.com"),
		MaxAttempts:    envInt("RENTCLI_MAX_ATTEMPTS", 5),
		DelaySeconds:   envInt("RENTCLI_DELAY_SECONDS", 15),
		RequireMarker:  envString("RENTCLI_REQUIRE_MARKER", "for-rent"),
		TimeoutSeconds: envInt("RENTCLI_TIMEOUT_SECONDS", 30),
		DB:             envString("RENTCLI_DB", ""),
	}
}

// LoadEnv reads a .env file from the working directory into the process
// environment. Variables already set are left alone; a missing file is not
// an error.
func LoadEnv() error {
	err := godotenv.Load(EnvFileName)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ZipcodesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ZipcodesFileName), nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom overlays the json5 file at path on top of the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Init writes default config.json and a zipcodes.csv template if they don't already exist.
func Init() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return InitDir(dir)
}

func InitDir(dir string) ([]string, error) {
	var created []string

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	zipcodesPath := filepath.Join(dir, ZipcodesFileName)
	if _, err := os.Stat(zipcodesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(zipcodesPath, []byte("zip\n"), 0o644); err != nil {
			return created, err
		}
		created = append(created, zipcodesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
