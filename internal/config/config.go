// Package config provides configuration loading.
//
// Values are resolved in order: built-in defaults, the TOML config file,
// then APPFEED_* environment variables. Every value is stored as a string
// and normalized by the validator registered for its key.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/cristianoliveira/appfeed/internal/colors"
)

// File permission constants
const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644

	// FileExtTOML is the file extension for configuration files.
	FileExtTOML = ".toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "APPFEED_"
	// EnvConfigPath points at an explicit config file.
	EnvConfigPath = EnvPrefix + "CONFIG_PATH"
)

var (
	config    map[string]string
	configMap map[string]string
	mu        sync.RWMutex
)

func init() {
	initValidators()
}

// Load initializes configuration.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	config = make(map[string]string)
	configMap = make(map[string]string)

	setDefaults()
	// env first so APPFEED_CONFIG_DIR can move the config file
	loadFromEnv()
	loadFromFile()
	// env wins over the file
	loadFromEnv()
	validate()
	computeDirs()
	createSampleConfig()
}

func setDefaults() {
	home, _ := os.UserHomeDir()
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(home, ".config")
	}
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		xdgStateHome = filepath.Join(home, ".local", "state")
	}

	setDefault("config_dir", filepath.Join(xdgConfigHome, "appfeed"))
	setDefault("state_dir", filepath.Join(xdgStateHome, "appfeed"))
	setDefault("db_path", "")
	setDefault("account", "")
	setDefault("page_size", "20")
	setDefault("server_url", "")
	setDefault("server_token", "")
	setDefault("listen_addr", "127.0.0.1:8080")
	setDefault("jwt_secret", "")
	setDefault("jwt_ttl_hours", "24")
	setDefault("rate_limit_rps", "10")
	setDefault("rate_limit_burst", "20")
	setDefault("cleanup_schedule", "@daily")
	setDefault("cleanup_days", "30")
	setDefault("list_format", "simple")
	setDefault("logging_enabled", "false")
	setDefault("logging_level", "info")
	setDefault("logging_max_files", "10")
	setDefault("debug", "false")
	setDefault("quiet", "false")
}

func setDefault(key, value string) {
	config[key] = value
	configMap[key] = value
}

func loadFromFile() {
	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = filepath.Join(config["config_dir"], "config"+FileExtTOML)
		if _, err := os.Stat(configPath); err != nil {
			return
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		colors.Debug(fmt.Sprintf("unable to read config file %s: %v", configPath, err))
		return
	}
	if strings.ToLower(filepath.Ext(configPath)) != FileExtTOML {
		colors.Warning(fmt.Sprintf("unsupported config file %s: expected %s", configPath, FileExtTOML))
		return
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", configPath, err))
		return
	}

	for k, v := range raw {
		key := strings.ToLower(k)
		converted, ok := coerceConfigValue(v)
		if !ok {
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
			continue
		}
		config[key] = converted
	}
}

// coerceConfigValue converts a decoded TOML value to its string form.
func coerceConfigValue(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

func loadFromEnv() {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, EnvPrefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok || name == EnvConfigPath {
			continue
		}
		config[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))] = value
	}
}

func validate() {
	for key, value := range config {
		validator := getValidator(key)
		if validator == nil {
			continue
		}
		defaultValue := configMap[key]
		normalized, err := validator(key, value, defaultValue)
		if err != nil {
			colors.Warning(fmt.Sprintf("validation error for %s: %v, using default: %s", key, err, defaultValue))
			config[key] = defaultValue
			continue
		}
		config[key] = normalized
	}
}

// computeDirs fills paths derived from state_dir.
func computeDirs() {
	if config["db_path"] == "" && config["state_dir"] != "" {
		config["db_path"] = filepath.Join(config["state_dir"], "notifications.db")
	}
}

// valueToInterface converts a configuration value to a typed TOML value.
func valueToInterface(val string) any {
	if n, err := strconv.Atoi(val); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return val
}

// sampleSkipped keys are machine specific or secret and stay out of the sample.
var sampleSkipped = map[string]bool{
	"config_dir":   true,
	"state_dir":    true,
	"db_path":      true,
	"jwt_secret":   true,
	"server_token": true,
}

func createSampleConfig() {
	configDir := config["config_dir"]
	if configDir == "" {
		return
	}
	samplePath := filepath.Join(configDir, "config"+FileExtTOML)
	if _, err := os.Stat(samplePath); err == nil {
		return
	}
	if err := os.MkdirAll(configDir, FileModeDir); err != nil {
		colors.Debug(fmt.Sprintf("unable to create config dir %s: %v", configDir, err))
		return
	}

	typed := make(map[string]any)
	for k, v := range configMap {
		if sampleSkipped[k] {
			continue
		}
		typed[k] = valueToInterface(v)
	}

	data, err := toml.Marshal(typed)
	if err != nil {
		colors.Warning(fmt.Sprintf("unable to marshal sample config: %v", err))
		return
	}
	header := "# appfeed configuration\n# This file is in TOML format.\n# Environment variables (APPFEED_<KEY>) override these values.\n\n"
	if err := os.WriteFile(samplePath, append([]byte(header), data...), FileModeFile); err != nil {
		colors.Warning(fmt.Sprintf("unable to write sample config to %s: %v", samplePath, err))
	}
}

// Set overrides a value for the rest of the process, e.g. from a CLI flag.
// The value goes through the key's validator.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		config = make(map[string]string)
		configMap = make(map[string]string)
	}
	if validator := getValidator(key); validator != nil {
		normalized, err := validator(key, value, configMap[key])
		if err != nil {
			return
		}
		value = normalized
	}
	config[key] = value
}

// Get returns a configuration value or default.
func Get(key, defaultValue string) string {
	mu.RLock()
	defer mu.RUnlock()
	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

// GetInt returns a configuration value as integer, or default.
func GetInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// GetFloat returns a configuration value as float, or default.
func GetFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(Get(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// GetBool returns a configuration value as boolean, or default.
func GetBool(key string, defaultValue bool) bool {
	switch normalizeBool(Get(key, "")) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultValue
	}
}

// GetDuration returns an integer value scaled by unit, or default when the
// value is missing or not positive.
func GetDuration(key string, unit time.Duration, defaultValue time.Duration) time.Duration {
	n := GetInt(key, 0)
	if n <= 0 {
		return defaultValue
	}
	return time.Duration(n) * unit
}
