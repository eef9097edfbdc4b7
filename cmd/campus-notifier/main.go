// cmd/campus-notifier/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campus-notifier/internal/common/config"
	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/common/firebase"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/common/observability"
	"campus-notifier/internal/common/scheduler"
	"campus-notifier/internal/common/trigger"
	"campus-notifier/internal/embeds"
	"campus-notifier/internal/models"

	menuimages "campus-notifier/internal/workers/menu-images"
	"campus-notifier/internal/workers/moderation"
	"campus-notifier/internal/workers/push"
	"campus-notifier/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// checkRegistry warns when the deployed trigger manifest and the served
// trigger set drift apart. A missing manifest is not fatal.
func checkRegistry(path string, served []string, log *zap.Logger) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("trigger registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	missing, extra := reg.Diff(served)
	if len(missing) > 0 || len(extra) > 0 {
		log.Warn("trigger registry out of sync",
			zap.String("version", reg.Version),
			zap.Strings("notServed", missing),
			zap.Strings("undeclared", extra),
		)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
		"region":  cfg.Firebase.Region,
	})

	zapLog.Info("Starting campus notifier...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Firebase app, Firestore, FCM and Storage, shared by every handler ---
	var clients *firebase.Clients
	err = retryWithBackoff(func() error {
		var err error
		clients, err = firebase.NewClients(ctx, cfg.Firebase)
		return err
	}, 5, 2*time.Second, zapLog, "Firebase client initialization")
	if err != nil {
		zapLog.Fatal("firebase init failed after retries", zap.Error(err))
	}
	defer clients.Close()

	notifier := discord.NewClient(discord.WebhooksFromConfig(cfg.Discord), config.GetDuration(cfg.Discord.Timeout), log)
	formatter := embeds.New(time.Now)
	tokens := firebase.NewTokenStore(clients.Firestore)

	router := trigger.NewRouter(cfg, log, obs)

	// --- Moderator notices ---
	mod := moderation.NewHandler(moderation.LoadConfig(), notifier, firebase.NewNotificationWriter(clients.Firestore), formatter, log)
	for name, h := range mod.Triggers() {
		router.Register(name, h)
	}

	// --- Push fan-out ---
	pushHandler := push.NewHandler(push.LoadConfig(), tokens, firebase.NewMessenger(clients.Messaging), notifier, formatter, log)
	router.Register(push.TaskSendPush, trigger.HandlerFunc(pushHandler.HandleSingle))
	router.Register(push.TaskBroadcast, trigger.HandlerFunc(pushHandler.HandleBroadcast))

	// --- Menu image refresh ---
	var sched *scheduler.Scheduler
	if cfg.MenuImages.Enabled {
		job, err := menuimages.NewJob(menuimages.LoadConfig(cfg.MenuImages), firebase.NewBucket(clients.Bucket), log)
		if err != nil {
			zapLog.Fatal("menu image job setup failed", zap.Error(err))
		}

		timeout := cfg.MenuImages.JobTimeout
		if timeout <= 0 {
			timeout = config.DefaultJobTimeout
		}
		router.RegisterJob(menuimages.TaskType, job, config.GetDuration(timeout))

		sched, err = scheduler.New(cfg.MenuImages.TimeZone, log)
		if err != nil {
			zapLog.Fatal("scheduler setup failed", zap.Error(err))
		}
		if err := sched.Add(menuimages.TaskType, cfg.MenuImages.Schedule, router.JobFunc(menuimages.TaskType)); err != nil {
			zapLog.Fatal("menu image schedule invalid", zap.Error(err))
		}
		sched.Start()
	} else {
		zapLog.Info("menu image refresh disabled")
	}

	zapLog.Info("Triggers registered", zap.Strings("triggers", router.Triggers()), zap.Strings("jobs", router.Jobs()))
	checkRegistry(cfg.App.RegistryPath, append(router.Triggers(), router.Jobs()...), zapLog)

	// --- HTTP ingress ---
	ready := func() error {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := clients.Firestore.Collection(models.CollectionUserTokens).Limit(1).Documents(rctx).GetAll()
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router.Routes(ready),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Campus notifier stopped")
}
