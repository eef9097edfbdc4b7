// internal/cinotify/env.go
package cinotify

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultRepository = "unknown/repo"
	defaultServerURL  = "https://github.com"
)

// Env is the GitHub Actions environment the notifier runs in.
type Env struct {
	WebhookURL string
	EventName  string
	EventPath  string
	RefName    string
	Repository string
	ServerURL  string
	SHA        string
}

// LoadEnv reads the notifier's variables from the process environment.
// DISCORD_WEBHOOK_URL_GITHUB takes precedence over DISCORD_WEBHOOK_URL.
func LoadEnv() Env {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("GITHUB_REPOSITORY", defaultRepository)
	v.SetDefault("GITHUB_SERVER_URL", defaultServerURL)

	webhook := strings.TrimSpace(v.GetString("DISCORD_WEBHOOK_URL_GITHUB"))
	if webhook == "" {
		webhook = strings.TrimSpace(v.GetString("DISCORD_WEBHOOK_URL"))
	}

	return Env{
		WebhookURL: webhook,
		EventName:  v.GetString("GITHUB_EVENT_NAME"),
		EventPath:  v.GetString("GITHUB_EVENT_PATH"),
		RefName:    v.GetString("GITHUB_REF_NAME"),
		Repository: orDefault(v.GetString("GITHUB_REPOSITORY"), defaultRepository),
		ServerURL:  orDefault(v.GetString("GITHUB_SERVER_URL"), defaultServerURL),
		SHA:        v.GetString("GITHUB_SHA"),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
