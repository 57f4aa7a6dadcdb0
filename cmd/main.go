package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v3"

	"gatebot/config"
	"gatebot/pkg/bot"
	"gatebot/pkg/logger"
	"gatebot/pkg/membership"
	"gatebot/pkg/provider"
	"gatebot/service"
	"gatebot/storage/postgres"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	pgStore, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		log.Error("Failed to initialize telegram bot", logger.Error(err))
		os.Exit(1)
	}

	oracle := membership.New(tb, log)
	servers := provider.New(cfg.SourceURL, nil, log)
	svc := service.New(pgStore, oracle, servers, cfg.AdminID, log)

	gateBot := bot.New(tb, &cfg, svc, log)

	scheduler := service.NewSchedulerService()
	if cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, gateBot.SendDigest); err != nil {
			log.Error("Failed to schedule daily digest", logger.Error(err))
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	go gateBot.Start()

	log.Info("🚀 Gatebot is now running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("Stopping bot and shutting down...")
	gateBot.Stop()
}
