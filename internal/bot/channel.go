package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-alert-bot/internal/bot/utils"
	"job-alert-bot/internal/engine"
	"job-alert-bot/internal/models"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

// DefaultSendRate stays under Telegram's global limit of 30 messages per
// second.
const DefaultSendRate = 20

const maxFloodWait = 30 * time.Second

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Channel delivers listing cards and plain notices to Telegram chats.
type Channel struct {
	sender  sender
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewChannel(s sender, perSecond float64, logger *zap.Logger) *Channel {
	if perSecond <= 0 {
		perSecond = DefaultSendRate
	}
	return &Channel{
		sender:  s,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger,
	}
}

func (ch *Channel) Deliver(ctx context.Context, chatID int64, listing models.Listing) error {
	opts := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	}
	if err := ch.send(ctx, chatID, utils.FormatListing(listing), opts); err != nil {
		return fmt.Errorf("send listing %s: %w: %w", listing.UID, engine.ErrDelivery, err)
	}
	return nil
}

func (ch *Channel) Notify(ctx context.Context, chatID int64, text string) error {
	opts := &tele.SendOptions{DisableWebPagePreview: true}
	if err := ch.send(ctx, chatID, text, opts); err != nil {
		return fmt.Errorf("send notice: %w: %w", engine.ErrDelivery, err)
	}
	return nil
}

// send paces outgoing messages and retries once when Telegram asks to slow
// down.
func (ch *Channel) send(ctx context.Context, chatID int64, text string, opts *tele.SendOptions) error {
	if err := ch.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := ch.sender.Send(tele.ChatID(chatID), text, opts)

	var flood tele.FloodError
	if !errors.As(err, &flood) {
		return err
	}

	wait := time.Duration(flood.RetryAfter) * time.Second
	if wait > maxFloodWait {
		return err
	}

	ch.logger.Warn("telegram flood control, retrying",
		zap.Int64("user_id", chatID),
		zap.Duration("retry_after", wait),
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}

	_, err = ch.sender.Send(tele.ChatID(chatID), text, opts)
	return err
}
