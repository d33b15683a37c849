package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tazhate/noxd/config"
	"github.com/tazhate/noxd/internal/alarms"
	"github.com/tazhate/noxd/internal/catalog"
	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/notify"
	"github.com/tazhate/noxd/internal/sched"
	"github.com/tazhate/noxd/internal/settings"
	"github.com/tazhate/noxd/internal/speech"
	"github.com/tazhate/noxd/internal/storage"
	"github.com/tazhate/noxd/internal/tones"
	"github.com/tazhate/noxd/internal/wake"
	"github.com/tazhate/noxd/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "configs/noxd.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	settingsSvc, err := settings.NewService(store)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	// Speech fallback chain: cloud (when a key is saved), then local system
	// voices, then the bare engine.
	engine := speech.NewEngine()
	gateway := speech.NewGateway(
		speech.NewCloudClient(cfg.CloudTTSEndpoint),
		speech.NewLocalVoices(engine),
		engine,
	)

	toneCache := tones.NewCache(cfg.ToneCacheDir)
	orchestrator := wake.NewOrchestrator(
		settingsSvc,
		gateway,
		&wake.TonePlayback{Cache: toneCache},
		wake.LogPresenter{},
	)

	notifier := buildNotifier(cfg)

	backend := cfg.SchedulerBackend
	if backend == "auto" {
		if notifier != nil {
			backend = "cron"
		} else {
			backend = "timer"
		}
	}

	var scheduler sched.Scheduler
	var stopScheduler func()
	if backend == "timer" {
		ts := sched.NewTimerScheduler(cfg.Timezone, notifier, fireFunc(orchestrator))
		scheduler, stopScheduler = ts, ts.Stop
	} else {
		cs := sched.NewCronScheduler(cfg.Timezone, notifier, fireFunc(orchestrator))
		cs.Start()
		scheduler, stopScheduler = cs, cs.Stop
	}
	log.Printf("Using %s scheduler backend", backend)

	alarmStore := alarms.NewStore(store, scheduler, settingsSvc, catalog.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handles persisted by the previous process are dead; re-arm everything.
	if err := alarmStore.RescheduleAll(ctx); err != nil {
		log.Printf("Rescheduling alarms: %v", err)
	}

	srv := web.NewServer(alarmStore, settingsSvc, gateway, toneCache, orchestrator)
	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: srv,
	}
	go func() {
		log.Printf("Listening on :%s", cfg.ServerPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Println("noxd started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	gateway.Stop()
	stopScheduler()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping server: %v", err)
	}
}

func fireFunc(orch *wake.Orchestrator) sched.FireFunc {
	return func(payload domain.WakePayload) {
		orch.HandleFire(context.Background(), payload)
	}
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	if cfg.HasTelegram() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("Telegram init failed, wake push disabled: %v", err)
			return nil
		}
		return tg
	}
	if cfg.HasPushover() {
		return notify.NewPushover(cfg.PushoverToken, cfg.PushoverUser)
	}
	return nil
}
