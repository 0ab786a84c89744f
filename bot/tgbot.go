// Package bot implements the Telegram front end of the referral contest.
//
// Architecture overview:
//   - tgbot.go    : TgBot struct, lifecycle (Start/Stop), Core interface
//   - commands.go : participant commands: /start, /stats, /top, /help
//   - admin.go    : admin command /status
//   - callbacks.go: inline keyboard builders and callback query handlers
//   - menus.go    : per-role command menus via Telegram's BotCommandScope API
//   - messaging.go: platform capabilities used by the contest: channel membership,
//     member count, plain text delivery
//   - texts.go    : message rendering
//   - helpers.go  : shared utilities: Sanitize, plainResponse, reportError
//
// Data flow for a registration:
//
//	/start ref<id> → Core.Register → Outcome → rendered reply:
//	  welcomed           → referral link + main keyboard
//	  needs subscription → subscribe prompt with "check_sub" callback
//	  contest ended      → final notice
//	  storage error      → try later
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"

	"refcontest/entity"
	"refcontest/internal/contest"
	"refcontest/lib/sl"
)

const requestTimeout = 20 * time.Second

// Config holds Telegram-specific settings loaded from the YAML config file.
type Config struct {
	AdminID int64
	// Channel is the public channel users must join, as @name, https://t.me/name or a numeric id.
	Channel         string
	LeaderboardSize int
}

// Core is the contest surface the bot works with; implemented by impl/core.
type Core interface {
	Register(ctx context.Context, req contest.RegisterRequest) entity.Outcome
	Recheck(ctx context.Context, userID int64) entity.Outcome
	Stats(ctx context.Context, userID int64) (entity.ParticipantStats, error)
	Top(ctx context.Context, n int) ([]entity.LeaderboardRow, error)
	Summary(ctx context.Context) (*entity.ContestSummary, error)
	CheckCap(ctx context.Context) (ended bool, count int, err error)
}

// TgBot is the Telegram bot instance. Handlers run concurrently on the dispatcher's
// goroutines; all shared state lives behind Core.
type TgBot struct {
	log       *slog.Logger
	api       *tgbotapi.Bot
	core      Core
	config    Config
	channel   channelRef
	channelId atomic.Int64 // resolved numeric id of the channel, 0 until first lookup
	updater   *ext.Updater
}

func NewTgBot(apiKey string, log *slog.Logger, cfg Config) (*TgBot, error) {
	if cfg.LeaderboardSize < 1 {
		cfg.LeaderboardSize = contest.DefaultLeaderboardSize
	}
	channel, err := parseChannel(cfg.Channel)
	if err != nil {
		return nil, err
	}

	tgBot := &TgBot{
		log:     log.With(sl.Module("tgbot")),
		config:  cfg,
		channel: channel,
	}
	if channel.id != 0 {
		tgBot.channelId.Store(channel.id)
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

// SetCore connects the contest; the bot ignores updates until it is set.
func (t *TgBot) SetCore(core Core) {
	t.core = core
}

// Username is the bot's own handle, used to build referral links.
func (t *TgBot) Username() string {
	return t.api.Username
}

// ChannelLink is the public URL of the channel participants must join.
func (t *TgBot) ChannelLink() string {
	return t.channel.link()
}

func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	// Participant commands
	dispatcher.AddHandler(handlers.NewCommand("start", t.start))
	dispatcher.AddHandler(handlers.NewCommand("stats", t.stats))
	dispatcher.AddHandler(handlers.NewCommand("top", t.top))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))

	// Admin commands
	dispatcher.AddHandler(handlers.NewCommand("status", t.status))

	// Callback query handlers
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbCheckSub), t.onCheckSubCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbMyStats), t.onMyStatsCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbTopList), t.onTopListCallback))

	t.setDefaultCommands()
	t.setAdminCommands()

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.With(slog.String("username", t.api.Username)).Info("telegram bot started")
	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
}

// inviteLink is the deep link that attributes registrations to the owner of code.
func (t *TgBot) inviteLink(code string) string {
	return inviteLink(t.api.Username, code)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
