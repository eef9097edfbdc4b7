// cmd/discord-notify/main.go
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"campus-notifier/internal/cinotify"
	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/common/logger"
)

func main() {
	// Local runs may keep the webhook in .env; Actions passes it directly.
	_ = godotenv.Load()

	zapLog := logger.New(os.Getenv("LOG_LEVEL"), "console")
	code := run(logger.NewZapAdapter(zapLog))
	_ = zapLog.Sync()
	os.Exit(code)
}

// run sends the notification and returns the process exit code. Deferred
// cleanup finishes before main exits.
func run(log logger.Logger) int {
	env := cinotify.LoadEnv()
	log.Info("Discord notification", map[string]interface{}{
		"event":             env.EventName,
		"eventPath":         env.EventPath,
		"webhookConfigured": env.WebhookURL != "",
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sender := discord.NewClient(discord.Webhooks{}, discord.DefaultTimeout, log)
	err := cinotify.NewNotifier(env, cinotify.ExecGit{}, sender, log).Run(ctx)

	code := cinotify.ExitCode(err)
	switch {
	case err == nil:
	case code == 0:
		log.Warn("event not supported, skipping notification", map[string]interface{}{"event": env.EventName})
	default:
		log.Error("Discord notification failed", map[string]interface{}{"error": err})
	}
	return code
}
