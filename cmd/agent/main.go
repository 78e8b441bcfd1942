package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flag_notification_agent/internal/app"
	"flag_notification_agent/internal/infra/api"
	"flag_notification_agent/internal/infra/config"
	"flag_notification_agent/internal/infra/logger"
	"flag_notification_agent/internal/infra/metrics"
	"flag_notification_agent/internal/infra/notify"
	"flag_notification_agent/internal/infra/scheduler"
	"flag_notification_agent/internal/infra/store"
	"flag_notification_agent/internal/infra/visibility"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Flag Notification Agent starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLog := logger.WithComponent("main")
	mainLog.Infof("Configuration loaded. LogLevel: %s, Environment: %s, PollInterval: %s", cfg.LogLevel, cfg.Environment, cfg.PollInterval)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		mainLog.WithError(err).Fatal("Could not register metrics collectors.")
	}

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APIToken, 10*time.Second)

	snapStore, err := store.NewSQLiteStore(cfg.SnapshotDBPath, cfg.CallerKey, logger.WithComponent("store"))
	if err != nil {
		mainLog.WithError(err).Fatal("Could not open snapshot store.")
	}
	defer snapStore.Close()
	mainLog.Info("Snapshot store opened.")

	center := notify.NewToastCenter(cfg.ToastOffsetStep, logger.WithComponent("notify"))
	center.AddRenderer(notify.NewLogRenderer(logger.WithComponent("toast")))
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
		if err != nil {
			mainLog.WithError(err).Warn("Telegram renderer disabled: could not create bot.")
		} else {
			center.AddRenderer(notify.NewTelegramRenderer(bot, cfg.TelegramChatID, logger.WithComponent("telegram")))
			mainLog.Info("Telegram renderer registered.")
		}
	}
	dispatcher := notify.NewDispatcher(center, cfg.FlagsReviewURL, cfg.StatusToastDuration, cfg.ResponseToastDuration)

	engine := app.NewPollEngine(apiClient, snapStore, dispatcher, cfg.RecentResolutionWindow, logger.WithComponent("engine"))

	vis := visibility.NewSignal(true)
	pollScheduler := scheduler.NewPollScheduler(engine, vis, cfg.PollInterval, cfg.SettleDelay, cfg.CycleTimeout, logger.WithComponent("scheduler"))

	lifecycle := app.NewLifecycleManager(apiClient, engine, pollScheduler, cfg.IdentityProbeInterval, cfg.IdentityProbeAttempts, logger.WithComponent("lifecycle"))

	// Control listener: health, metrics, and the visibility signal the
	// dashboard session reports.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/visibility", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			Visible bool `json:"visible"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		vis.Set(body.Visible)
		w.WriteHeader(http.StatusNoContent)
	})

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		mainLog.Infof("Control listener on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			mainLog.WithError(err).Error("Control listener failed.")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := lifecycle.Initialize(ctx); err != nil {
		mainLog.WithError(err).Fatal("Could not initialize agent.")
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLog.Info("Shutting down...")
	lifecycle.Shutdown()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLog.WithError(err).Warn("Control listener shutdown was not clean.")
	}
	mainLog.Info("Agent shut down gracefully.")
}
