// internal/workers/menu-images/config.go
package menuimages

import (
	"time"

	"campus-notifier/internal/common/config"
)

type Config struct {
	PageURL         string
	Prefix          string
	Patterns        []config.PatternConfig
	PageTimeout     time.Duration
	DownloadTimeout time.Duration
	// ClearConcurrency bounds parallel deletes while clearing the prefix.
	ClearConcurrency int
	MaxPageBytes     int64
	MaxImageBytes    int64
}

func LoadConfig(cfg config.MenuImagesConfig) *Config {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = config.DefaultMenuPatterns
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Config{
		PageURL:          cfg.PageURL,
		Prefix:           prefix,
		Patterns:         patterns,
		PageTimeout:      durationOr(cfg.PageTimeout, config.DefaultPageTimeout),
		DownloadTimeout:  durationOr(cfg.DownloadTimeout, config.DefaultDownloadTimeout),
		ClearConcurrency: 8,
		MaxPageBytes:     5 << 20,
		MaxImageBytes:    20 << 20,
	}
}

func durationOr(ms, def int) time.Duration {
	if ms <= 0 {
		ms = def
	}
	return config.GetDuration(ms)
}
