// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"storemigrate/pkg/common"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yaml"
	ConfigDirName  = "storemigrate"
	EnvPrefix      = "STOREMIGRATE"
)

// Connection settings for one object store. Key is the privileged credential (service key,
// access key id, or a service account file for GCP)
type EndpointConfig struct {
	Provider common.Provider `mapstructure:"provider" validate:"omitempty,oneof=supabase s3 minio gcp"`
	URL      string          `mapstructure:"url" validate:"omitempty,url"`
	Key      string          `mapstructure:"key"`
	Secret   string          `mapstructure:"secret"`
	Region   string          `mapstructure:"region"`
	Project  string          `mapstructure:"project"`
}

// Returns the provider, defaulting to supabase when unset
func (e EndpointConfig) ProviderOrDefault() common.Provider {
	if e.Provider == "" {
		return common.Supabase
	}
	return e.Provider
}

// Reports whether any connection setting is present
func (e EndpointConfig) IsSet() bool {
	return e.URL != "" || e.Key != "" || e.Project != ""
}

type MigrationConfig struct {
	OverwriteExisting bool          `mapstructure:"overwrite_existing"`
	PageSize          int           `mapstructure:"page_size" validate:"min=1,max=10000"`
	Concurrency       int           `mapstructure:"concurrency" validate:"min=1,max=64"`
	WrappingRoot      string        `mapstructure:"wrapping_root" validate:"oneof=auto present absent"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" validate:"min=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type Config struct {
	Source      EndpointConfig  `mapstructure:"source"`
	Destination EndpointConfig  `mapstructure:"destination"`
	Migration   MigrationConfig `mapstructure:"migration"`
	Log         LogConfig       `mapstructure:"log"`
}

// Endpoint names accepted wherever a single endpoint is selected
const (
	EndpointSource      = "source"
	EndpointDestination = "destination"
)

// Returns the named endpoint block
func (c *Config) Endpoint(name string) (EndpointConfig, error) {
	switch strings.ToLower(name) {
	case EndpointSource:
		return c.Source, nil
	case EndpointDestination:
		return c.Destination, nil
	default:
		return EndpointConfig{}, fmt.Errorf("unknown endpoint '%s'. Use '%s' or '%s'", name, EndpointSource, EndpointDestination)
	}
}

var defaults = map[string]interface{}{
	"source.provider":              "",
	"source.url":                   "",
	"source.key":                   "",
	"source.secret":                "",
	"source.region":                "",
	"source.project":               "",
	"destination.provider":         "",
	"destination.url":              "",
	"destination.key":              "",
	"destination.secret":           "",
	"destination.region":           "",
	"destination.project":          "",
	"migration.overwrite_existing": true,
	"migration.page_size":          1000,
	"migration.concurrency":        1,
	"migration.wrapping_root":      "auto",
	"migration.request_timeout":    "5m",
	"log.level":                    "info",
}

// Returns the sorted list of keys accepted by 'config set'
func KnownKeys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func IsKnownKey(key string) bool {
	_, ok := defaults[strings.ToLower(key)]
	return ok
}

// Reports whether the key holds a credential that should not be echoed back
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, ".key") || strings.HasSuffix(key, ".secret")
}

// ConfigManager reads configuration through viper (file, environment, defaults) and
// persists edits to the YAML file
type ConfigManager struct {
	v        *viper.Viper
	path     string
	validate *validator.Validate
}

// Creates a manager for the given file, or the default location when path is empty
func NewConfigManager(path string) (*ConfigManager, error) {
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return nil, err
		}
	}

	m := &ConfigManager{
		path:     path,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", ConfigDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	return filepath.Join(configDir, ConfigFileName), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func (m *ConfigManager) reload() error {
	v := newViper()
	v.SetConfigFile(m.path)

	if _, err := os.Stat(m.path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading config file: %w", err)
	}

	m.v = v
	return nil
}

func (m *ConfigManager) Path() string {
	return m.path
}

// Decodes and validates the effective configuration
func (m *ConfigManager) LoadConfig() (*Config, error) {
	return m.decode(m.v)
}

func (m *ConfigManager) decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		providerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := m.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Normalizes provider names so "S3" and " s3" decode to the same provider
func providerHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(common.Provider("")) {
			return data, nil
		}
		return common.ParseProvider(data.(string)), nil
	}
}

func (m *ConfigManager) GetValue(key string) (string, bool) {
	key = strings.ToLower(key)
	if !IsKnownKey(key) {
		return "", false
	}
	return m.v.GetString(key), true
}

func (m *ConfigManager) GetAllSettings() map[string]interface{} {
	return m.v.AllSettings()
}

// Validates and persists a single key. The file is left untouched when the resulting
// configuration would be invalid
func (m *ConfigManager) SetValue(key, value string) error {
	key = strings.ToLower(key)
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown config key: %s. Known keys: %s", key, strings.Join(KnownKeys(), ", "))
	}

	raw, err := m.readFile()
	if err != nil {
		return err
	}
	setNested(raw, strings.Split(key, "."), value)

	candidate := newViper()
	if err := candidate.MergeConfigMap(raw); err != nil {
		return fmt.Errorf("error applying config value: %w", err)
	}
	if _, err := m.decode(candidate); err != nil {
		return err
	}

	return m.writeFile(raw)
}

// Removes a key from the file. Returns false when the file did not set it
func (m *ConfigManager) DeleteValue(key string) (bool, error) {
	key = strings.ToLower(key)
	if !IsKnownKey(key) {
		return false, nil
	}

	raw, err := m.readFile()
	if err != nil {
		return false, err
	}
	if !deleteNested(raw, strings.Split(key, ".")) {
		return false, nil
	}
	if err := m.writeFile(raw); err != nil {
		return false, err
	}
	return true, nil
}

func (m *ConfigManager) readFile() (map[string]interface{}, error) {
	raw := make(map[string]interface{})
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}
	return raw, nil
}

func (m *ConfigManager) writeFile(raw map[string]interface{}) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	// Credentials live in this file
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return m.reload()
}

func setNested(raw map[string]interface{}, path []string, value string) {
	current := raw
	for _, part := range path[:len(path)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

func deleteNested(raw map[string]interface{}, path []string) bool {
	current := raw
	for _, part := range path[:len(path)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	last := path[len(path)-1]
	if _, ok := current[last]; !ok {
		return false
	}
	delete(current, last)
	return true
}
