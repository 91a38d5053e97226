package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/api"
	"github.com/courtvision/lineup-service/internal/api/handlers"
	"github.com/courtvision/lineup-service/internal/cache"
	"github.com/courtvision/lineup-service/internal/config"
	"github.com/courtvision/lineup-service/internal/il"
	"github.com/courtvision/lineup-service/internal/lineup"
	"github.com/courtvision/lineup-service/internal/match"
	"github.com/courtvision/lineup-service/internal/pipeline"
	"github.com/courtvision/lineup-service/internal/providers"
	"github.com/courtvision/lineup-service/internal/report"
	"github.com/courtvision/lineup-service/internal/scheduler"
	"github.com/courtvision/lineup-service/internal/value"
	"github.com/courtvision/lineup-service/internal/waiver"
	"github.com/courtvision/lineup-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger("", cfg.IsDevelopment())
	log := logger.WithService("lineup-service")
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting Lineup Service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := cache.NewStore(cache.Config{
		RedisURL:   cfg.RedisURL,
		ScoreTTL:   cfg.ScoreCacheTTL,
		KeyPrefix:  "lineup:",
		MaxRetries: 3,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer store.Close()

	breakers := providers.NewBreakers(cfg.BreakerThreshold, cfg.ExternalAPITimeout)

	ctx := context.Background()
	scores := providers.NewScoresProvider(cfg.ScoreSourceURL, store, breakers)
	platform := providers.NewPlatformProvider(ctx, providers.PlatformConfig{
		BaseURL:      cfg.PlatformBaseURL,
		TokenURL:     cfg.PlatformTokenURL,
		ClientID:     cfg.PlatformClientID,
		ClientSecret: cfg.PlatformSecret,
		RefreshToken: cfg.PlatformRefreshTok,
		LeagueID:     cfg.LeagueID,
		TeamID:       cfg.TeamKey,
	}, breakers)
	schedule := providers.NewScheduleProvider(cfg.ScheduleSourceURL, breakers)
	mvp := providers.NewMVPProvider(cfg.MVPSourceURL, breakers)

	model := value.NewModel(cfg.UntouchableBonus)
	pipe := pipeline.New(
		pipeline.Config{FreeAgentCap: cfg.FreeAgentCap},
		scores, platform, schedule, mvp, store,
		match.NewMatcher(cfg.FuzzyThreshold),
		model,
		lineup.NewAssigner(model, cfg.BenchSlots, cfg.LowRankThreshold),
		waiver.NewComparator(model, waiver.Filters{
			MaxPlatformRank: cfg.FAMaxRank,
			MinMPG:          cfg.FAMinMPG,
			MinGamesLast30:  cfg.FAMinGamesLast30,
		}),
		il.NewManager(model, cfg.MaxILSlots),
	)

	mailCfg := report.MailConfig{}
	if cfg.EnableEmail {
		mailCfg = report.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.ReportFrom,
			To:       cfg.ReportTo,
		}
	}
	mailer := report.NewMailer(mailCfg)

	var sched *scheduler.Scheduler
	if cfg.EnableScheduledRun {
		sched = scheduler.New(pipe, mailer, cfg.DailyRunSchedule, cfg.WeeklyMVPSchedule)
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	} else {
		log.Warn("Scheduled runs disabled, HTTP triggers only")
	}

	router := api.NewRouter(
		handlers.NewHealthHandler(store, breakers, []string{
			providers.UpstreamScores, providers.UpstreamPlatform, providers.UpstreamSchedule,
		}),
		handlers.NewLineupHandler(pipe, store, mailer),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 11 * time.Minute, // manual runs wait on slow upstreams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}
