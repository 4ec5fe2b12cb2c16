package bot

import (
	"context"
	"fmt"
	"time"

	"job-alert-bot/internal/bot/handlers"
	"job-alert-bot/internal/bot/middleware"
	"job-alert-bot/internal/config"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Bot represents Telegram bot
type Bot struct {
	bot     *tele.Bot
	channel *Channel
	config  *config.Config
	logger  *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("telegram error", zap.Error(err))
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		channel: NewChannel(b, DefaultSendRate, logger.Named("channel")),
		config:  cfg,
		logger:  logger,
	}

	logger.Info("bot initialized successfully", zap.String("username", b.Me.Username))

	return bot, nil
}

// Channel is the delivery channel backed by this bot.
func (b *Bot) Channel() *Channel {
	return b.channel
}

// Setup installs middleware and command handlers. counter may be nil, in
// which case commands are not rate limited.
func (b *Bot) Setup(hctx *handlers.Context, counter middleware.Counter) {
	b.bot.Use(middleware.Recovery(b.logger))

	b.bot.Use(middleware.Logger(b.logger))

	if counter != nil {
		b.bot.Use(middleware.RateLimit(counter, b.logger))
	}

	b.bot.Handle("/start", handlers.HandleStart(hctx))
	b.bot.Handle("/help", handlers.HandleHelp(hctx))
	b.bot.Handle("/ping", handlers.HandlePing(hctx))
	b.bot.Handle("/sources", handlers.HandleSources(hctx))
	b.bot.Handle("/status", handlers.HandleStatus(hctx))
	b.bot.Handle("/set", handlers.HandleSet(hctx))
	b.bot.Handle("/now", handlers.HandleNow(hctx))

	b.logger.Info("handlers registered")
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting bot...")

	go b.bot.Start()

	<-ctx.Done()

	b.logger.Info("stopping bot...")
	b.bot.Stop()

	return nil
}
