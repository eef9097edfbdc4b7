// internal/workers/push/config.go
package push

// MulticastBatchSize is the FCM ceiling for one multicast call.
const MulticastBatchSize = 500

type Config struct {
	DefaultTitle string
	DefaultType  string
	// CleanupConcurrency bounds parallel token deletions within one batch.
	CleanupConcurrency int
}

func LoadConfig() *Config {
	return &Config{
		DefaultTitle:       "CIT App",
		DefaultType:        "general",
		CleanupConcurrency: 16,
	}
}
