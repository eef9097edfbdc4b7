// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig                `mapstructure:"app"`
	Server     ServerConfig             `mapstructure:"server"`
	Firebase   FirebaseConfig           `mapstructure:"firebase"`
	Discord    DiscordConfig            `mapstructure:"discord"`
	Triggers   map[string]TriggerConfig `mapstructure:"triggers"`
	MenuImages MenuImagesConfig         `mapstructure:"menu_images"`
	Redis      RedisConfig              `mapstructure:"redis"`
	Logging    LoggingConfig            `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// RegistryPath points at the trigger manifest checked at startup.
	RegistryPath string `mapstructure:"registry_path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// FirebaseConfig identifies the project whose Firestore, FCM and Storage
// the triggers act on. An empty CredentialsFile means application default
// credentials.
type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	StorageBucket   string `mapstructure:"storage_bucket"`
	// Region resolves FUNCTIONS_REGION, then FUNCTION_REGION, then us-central1.
	Region string `mapstructure:"region"`
}

// DiscordConfig holds the generic webhook and the per-kind overrides.
type DiscordConfig struct {
	WebhookURL         string `mapstructure:"webhook_url"`
	WebhookURLUsers    string `mapstructure:"webhook_url_users"`
	WebhookURLContacts string `mapstructure:"webhook_url_contacts"`
	WebhookURLBulletin string `mapstructure:"webhook_url_bulletin"`
	WebhookURLMenu     string `mapstructure:"webhook_url_menu"`
	WebhookURLReview   string `mapstructure:"webhook_url_review"`
	WebhookURLReport   string `mapstructure:"webhook_url_report"`
	Timeout            int    `mapstructure:"timeout"` // milliseconds
}

// TriggerConfig holds the settings applicable to every trigger.
type TriggerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

type MenuImagesConfig struct {
	Enabled         bool            `mapstructure:"enabled"`
	PageURL         string          `mapstructure:"page_url"`
	Schedule        string          `mapstructure:"schedule"`
	TimeZone        string          `mapstructure:"time_zone"`
	Prefix          string          `mapstructure:"prefix"`
	Patterns        []PatternConfig `mapstructure:"patterns"`
	PageTimeout     int             `mapstructure:"page_timeout"`     // milliseconds
	DownloadTimeout int             `mapstructure:"download_timeout"` // milliseconds
	JobTimeout      int             `mapstructure:"job_timeout"`      // milliseconds
}

// PatternConfig maps a file name prefix pattern to one canonical asset name.
type PatternConfig struct {
	Name    string `mapstructure:"name"`
	Pattern string `mapstructure:"pattern"`
}

// RedisConfig points at the widget cache mirror used by widget previews.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
