package usecase

import (
	"context"
	"time"

	"DeBrief/internal/domain/models"
	drepo "DeBrief/internal/domain/repository"
	"DeBrief/pkg/logger"
)

// TextSender sends a free-form reply.
type TextSender interface {
	SendText(ctx context.Context, creds models.TelegramCredentials, text string) error
}

// Listener long-polls the bot for commands from the configured chat.
type Listener struct {
	store       drepo.ConfigStore
	messenger   drepo.Messenger
	commands    *Commands
	replies     TextSender
	log         *logger.Logger
	pollTimeout time.Duration
	idleWait    time.Duration
	offset      int64
}

func NewListener(store drepo.ConfigStore, messenger drepo.Messenger, commands *Commands, replies TextSender, log *logger.Logger, pollTimeout time.Duration) *Listener {
	return &Listener{
		store:       store,
		messenger:   messenger,
		commands:    commands,
		replies:     replies,
		log:         log,
		pollTimeout: pollTimeout,
		idleWait:    5 * time.Second,
	}
}

func (l *Listener) Name() string { return "listener" }

// Run polls until ctx is done. Without credentials it idles and re-checks.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.log.Warn("telegram poll failed", logger.Error(err))
			if !sleep(ctx, l.idleWait) {
				return ctx.Err()
			}
		}
	}
}

// Poll runs one getUpdates round and answers every message in it.
func (l *Listener) Poll(ctx context.Context) error {
	cfg, err := l.store.Load(ctx)
	if err != nil {
		return err
	}
	creds := cfg.Telegram
	if !creds.Valid() {
		sleep(ctx, l.idleWait)
		return nil
	}
	msgs, err := l.messenger.GetUpdates(ctx, creds.BotToken, l.offset, l.pollTimeout)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m.UpdateID >= l.offset {
			l.offset = m.UpdateID + 1
		}
		if m.Text == "" {
			continue
		}
		if m.ChatID != creds.ChatID {
			l.log.Warn("ignoring message from foreign chat", logger.String("chat_id", m.ChatID), logger.String("from", m.From))
			continue
		}
		reply := l.commands.Handle(ctx, m.Text)
		if reply == "" {
			continue
		}
		if err := l.replies.SendText(ctx, creds, reply); err != nil {
			l.log.Warn("command reply failed", logger.Error(err))
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
