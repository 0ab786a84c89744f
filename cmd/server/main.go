package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"refcontest/bot"
	"refcontest/impl/auth"
	"refcontest/impl/core"
	"refcontest/internal/cache"
	"refcontest/internal/config"
	"refcontest/internal/contest"
	"refcontest/internal/database"
	"refcontest/internal/events"
	"refcontest/internal/http-server/api"
	"refcontest/internal/metrics"
	"refcontest/internal/notify"
	"refcontest/internal/telemetry"
	"refcontest/lib/clock"
	"refcontest/lib/logger"
	"refcontest/lib/sl"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)
	lg.Info("starting refcontest",
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		slog.String("store", conf.Store.Driver),
		slog.Int("cap", conf.Contest.Cap),
		sl.Secret("bot_token", conf.Telegram.ApiKey),
	)

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, conf.Telemetry, conf.Env)
	if err != nil {
		lg.Error("telemetry setup", sl.Err(err))
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	store, err := database.Open(ctx, conf, lg)
	if err != nil {
		log.Fatal("open store: ", err)
	}
	state := contest.NewState(store, clock.Real, lg)
	if err = state.Load(ctx); err != nil {
		log.Fatal("load contest state: ", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tgBot, err := bot.NewTgBot(conf.Telegram.ApiKey, lg, bot.Config{
		AdminID:         conf.Telegram.AdminID,
		Channel:         conf.Telegram.Channel,
		LeaderboardSize: conf.Contest.LeaderboardSize,
	})
	if err != nil {
		log.Fatal("telegram bot: ", err)
	}

	dispatcher := notify.NewDispatcher(tgBot, notify.Config{
		AdminID:  conf.Telegram.AdminID,
		Attempts: conf.Notify.Attempts,
		Delay:    conf.Notify.Delay,
	}, m, lg)

	// from here on, records at telegram.log_level reach the admin chat
	lg = slog.New(logger.NewTelegramHandler(lg.Handler(), dispatcher, logger.ParseLevel(conf.Telegram.LogLevel)))

	var adminNotices contest.AdminNotices = dispatcher
	var digest *notify.DigestBuffer
	if conf.Notify.AdminDigest > 0 {
		digest = notify.NewDigestBuffer(dispatcher, conf.Notify.AdminDigest)
		digest.StartTicker()
		adminNotices = digest
	}

	var subs contest.SubscriptionChecker = tgBot
	redisClient, err := cache.NewClient(ctx, conf.Redis)
	if err != nil {
		lg.Warn("redis unavailable, subscription checks are not cached", sl.Err(err))
	}
	if redisClient != nil {
		subs = cache.NewSubscriptionCache(tgBot, redisClient, conf.Redis.TTL, lg)
	}

	publisher, err := events.New(conf.Kafka, lg)
	if err != nil {
		lg.Warn("event stream unavailable", sl.Err(err))
		publisher = events.Nop{}
	}

	monitor := contest.NewMonitor(contest.MonitorConfig{
		Cap:           conf.Contest.Cap,
		PollInterval:  conf.Contest.PollInterval,
		RetryInterval: conf.Contest.RetryInterval,
	}, state, tgBot, dispatcher, publisher, m, clock.Real, lg)
	tracker := contest.NewTracker(contest.TrackerConfig{
		Cap:          conf.Contest.Cap,
		WriteTimeout: conf.Contest.WriteTimeout,
	}, store, monitor, subs, dispatcher, adminNotices, publisher, m, clock.Real, lg)
	leaderboard := contest.NewLeaderboard(store)

	handler := core.New(tracker, leaderboard, monitor, state, lg)
	handler.SetAuthService(auth.New(conf.Listen.APIToken))
	tgBot.SetCore(handler)

	countCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	count, err := tgBot.CurrentMemberCount(countCtx)
	cancel()
	if err != nil {
		lg.Warn("initial member count", sl.Err(err))
	}
	dispatcher.GoAdmin(bot.StartupNotice(tgBot.ChannelLink(), count, conf.Contest.Cap))

	if err = monitor.Start(); err != nil {
		log.Fatal("start cap monitor: ", err)
	}

	var server *api.Server
	if conf.Listen.Enabled {
		server = api.New(conf, lg, handler, registry)
		go func() {
			if err := server.Start(); err != nil {
				lg.Error("api server", sl.Err(err))
			}
		}()
	}

	go func() {
		if err := tgBot.Start(); err != nil {
			lg.Error("telegram bot", sl.Err(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	lg.Info("shutting down", slog.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	_ = dispatcher.NotifyAdmin(shutdownCtx, bot.ShutdownNotice())
	monitor.Stop()
	tgBot.Stop()
	if server != nil {
		if err = server.Shutdown(shutdownCtx); err != nil {
			lg.Warn("api server shutdown", sl.Err(err))
		}
	}
	if digest != nil {
		digest.Stop()
	}
	dispatcher.Close()
	publisher.Close()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	store.Close()
	if err = shutdownTelemetry(shutdownCtx); err != nil {
		lg.Warn("telemetry shutdown", sl.Err(err))
	}
	lg.Info("stopped")
}
