// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultRegion          = "us-central1"
	DefaultTriggerTimeout  = 60000
	DefaultWebhookTimeout  = 8000
	DefaultPageTimeout     = 30000
	DefaultDownloadTimeout = 60000
	DefaultJobTimeout      = 300000
)

// DefaultMenuPatterns is the ordered prefix table for the three dining hall
// feeds; the first matching pattern wins.
var DefaultMenuPatterns = []PatternConfig{
	{Name: "td.png", Pattern: `(?i)^(td|tsudanuma)[_-]?`},
	{Name: "sd1.png", Pattern: `(?i)^(sd|shinnarashino)[_-]?1`},
	{Name: "sd2.png", Pattern: `(?i)^(sd|shinnarashino)[_-]?2`},
}

// Load reads .env, configs/config.yaml, configs/config.<env>.yaml and the
// process environment, in increasing order of precedence.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	return load(v, true)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	return load(v, false)
}

func load(v *viper.Viper, optional bool) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || !optional {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	if optional {
		env := os.Getenv("APP_ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig()
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can bind it
// (e.g. discord.webhook_url_users <- DISCORD_WEBHOOK_URL_USERS).
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "campus-notifier")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.registry_path", "configs/trigger-registry.json")
	v.SetDefault("server.port", 8080)

	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_file", "")
	v.SetDefault("firebase.storage_bucket", "")
	v.SetDefault("firebase.region", "")

	v.SetDefault("discord.webhook_url", "")
	v.SetDefault("discord.webhook_url_users", "")
	v.SetDefault("discord.webhook_url_contacts", "")
	v.SetDefault("discord.webhook_url_bulletin", "")
	v.SetDefault("discord.webhook_url_menu", "")
	v.SetDefault("discord.webhook_url_review", "")
	v.SetDefault("discord.webhook_url_report", "")
	v.SetDefault("discord.timeout", DefaultWebhookTimeout)

	v.SetDefault("menu_images.enabled", true)
	v.SetDefault("menu_images.page_url", "")
	v.SetDefault("menu_images.schedule", "0 6 * * *")
	v.SetDefault("menu_images.time_zone", "Asia/Tokyo")
	v.SetDefault("menu_images.prefix", "menu_images/")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig applies the platform environment names that do not
// follow the section_key convention.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Firebase.Region == "" {
		cfg.Firebase.Region = firstEnv("FUNCTIONS_REGION", "FUNCTION_REGION")
	}
	if cfg.Firebase.ProjectID == "" {
		cfg.Firebase.ProjectID = firstEnv("GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT")
	}
	if cfg.Firebase.StorageBucket == "" {
		cfg.Firebase.StorageBucket = os.Getenv("FIREBASE_STORAGE_BUCKET")
	}
	if cfg.Firebase.CredentialsFile == "" {
		cfg.Firebase.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}

	// Cloud Run injects PORT.
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Firebase.Region == "" {
		cfg.Firebase.Region = DefaultRegion
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Discord.Timeout == 0 {
		cfg.Discord.Timeout = DefaultWebhookTimeout
	}

	if cfg.MenuImages.Prefix == "" {
		cfg.MenuImages.Prefix = "menu_images/"
	}
	if !strings.HasSuffix(cfg.MenuImages.Prefix, "/") {
		cfg.MenuImages.Prefix += "/"
	}
	if len(cfg.MenuImages.Patterns) == 0 {
		cfg.MenuImages.Patterns = append([]PatternConfig(nil), DefaultMenuPatterns...)
	}
	if cfg.MenuImages.PageTimeout == 0 {
		cfg.MenuImages.PageTimeout = DefaultPageTimeout
	}
	if cfg.MenuImages.DownloadTimeout == 0 {
		cfg.MenuImages.DownloadTimeout = DefaultDownloadTimeout
	}
	if cfg.MenuImages.JobTimeout == 0 {
		cfg.MenuImages.JobTimeout = DefaultJobTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for key, trigger := range cfg.Triggers {
		if trigger.Timeout == 0 {
			trigger.Timeout = DefaultTriggerTimeout
		}
		cfg.Triggers[key] = trigger
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.MenuImages.Enabled {
		if cfg.MenuImages.PageURL == "" {
			return fmt.Errorf("menu_images.page_url is required when menu_images.enabled")
		}
		if cfg.MenuImages.Schedule == "" {
			return fmt.Errorf("menu_images.schedule is required when menu_images.enabled")
		}
		if cfg.Firebase.StorageBucket == "" {
			return fmt.Errorf("firebase.storage_bucket is required when menu_images.enabled")
		}
	}

	seen := make(map[string]bool)
	for i, p := range cfg.MenuImages.Patterns {
		if p.Name == "" {
			return fmt.Errorf("menu_images.patterns[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("menu_images.patterns[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("menu_images.patterns[%d]: %w", i, err)
		}
	}

	return nil
}

// GetTriggerConfig retrieves trigger-specific configuration with fallback to defaults
func GetTriggerConfig(cfg *Config, name string) TriggerConfig {
	if trigger, exists := cfg.Triggers[name]; exists {
		return trigger
	}
	return TriggerConfig{
		Enabled: true,
		Timeout: DefaultTriggerTimeout,
	}
}

// IsTriggerEnabled reports whether a trigger should be registered.
// Triggers missing from the config are enabled.
func IsTriggerEnabled(cfg *Config, name string) bool {
	if trigger, exists := cfg.Triggers[name]; exists {
		return trigger.Enabled
	}
	return true
}
