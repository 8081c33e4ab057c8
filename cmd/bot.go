package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/configs"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/configs/loader/dotEnvLoader"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/delivery/httpapi"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/delivery/telegram"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/repository/cachedLookup"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/repository/gemini"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/repository/inaturalist"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/repository/sessions"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/usecase"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/pkg/logger"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/pkg/prometheus"
)

func main() {

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	loader := dotEnvLoader.DotEnvLoader{}
	cfg := configs.MustLoad(loader)
	log := logger.NewLogger(cfg)

	prometheus.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	geminiClient, err := gemini.NewClient(ctx, cfg.GM.APIKey)
	if err != nil {
		log.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	backends := make([]usecase.ModelBackend, 0, len(cfg.GM.Models))
	for _, model := range cfg.GM.Models {
		backends = append(backends, gemini.NewBackend(geminiClient, model))
	}

	taxonomy := cachedLookup.NewCachedLookup(inaturalist.NewRepo(cfg), log)
	resolver := usecase.NewResolver(backends, taxonomy, log)
	states := sessions.NewStore()

	// Metrics share the default mux with the bot's webhook listener.
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+cfg.HTTP.MetricsPort, nil)
	log.Info("Starting prometheus", "port", cfg.HTTP.MetricsPort)

	go http.ListenAndServe(":"+cfg.HTTP.Port, httpapi.NewServer(resolver, log))
	log.Info("Starting HTTP API", "port", cfg.HTTP.Port)

	bot, err := telegram.NewBot(ctx, cfg, states, resolver, log)
	if err != nil {
		log.Error("failed to create bot", "error", err)
		os.Exit(1)
	}
	log.Info("Starting bot")
	go bot.Run(ctx)
	<-done
	log.Info("Shutting down bot")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bot.Stop(ctx)
	log.Info("Service stopped")
}
