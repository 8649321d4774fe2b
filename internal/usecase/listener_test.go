package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedMessenger struct {
	batches [][]models.ChatMessage
	offsets []int64
	err     error
}

func (s *scriptedMessenger) SendMessage(context.Context, models.TelegramCredentials, string) error {
	return nil
}

func (s *scriptedMessenger) GetUpdates(_ context.Context, _ string, offset int64, _ time.Duration) ([]models.ChatMessage, error) {
	s.offsets = append(s.offsets, offset)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.batches) == 0 {
		return nil, nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

func (s *scriptedMessenger) GetMe(context.Context, string) (string, error) { return "bot", nil }

func TestListener_AnswersOnlyConfiguredChat(t *testing.T) {
	store := newMemStore(configWith("TSLA"))
	msgr := &scriptedMessenger{batches: [][]models.ChatMessage{{
		{UpdateID: 10, ChatID: "42", Text: "/off"},
		{UpdateID: 11, ChatID: "999", Text: "/remove TSLA"},
		{UpdateID: 12, ChatID: "42"},
	}}}
	replies := &recordingSink{}
	cmds := NewCommands(store, nil, nil, nil, time.Second)
	l := NewListener(store, msgr, cmds, replies, logger.Nop(), 25*time.Second)

	require.NoError(t, l.Poll(context.Background()))
	require.NoError(t, l.Poll(context.Background()))

	assert.Equal(t, []int64{0, 13}, msgr.offsets)
	assert.Equal(t, []string{"⏸ Monitoring paused"}, replies.texts)
	snap := store.snapshot()
	assert.False(t, snap.SystemActive)
	assert.Contains(t, snap.Tickers, "TSLA")
}

func TestListener_PollError(t *testing.T) {
	msgr := &scriptedMessenger{err: errors.New("timeout")}
	l := NewListener(newMemStore(configWith()), msgr, NewCommands(newMemStore(configWith()), nil, nil, nil, 0), &recordingSink{}, logger.Nop(), time.Second)
	assert.Error(t, l.Poll(context.Background()))
}

func TestListener_IdlesWithoutCredentials(t *testing.T) {
	cfg := configWith()
	cfg.Telegram = models.TelegramCredentials{}
	msgr := &scriptedMessenger{}
	l := NewListener(newMemStore(cfg), msgr, nil, &recordingSink{}, logger.Nop(), time.Second)
	l.idleWait = time.Millisecond

	require.NoError(t, l.Poll(context.Background()))
	assert.Empty(t, msgr.offsets)
}

func TestListener_RunStopsOnCancel(t *testing.T) {
	msgr := &scriptedMessenger{err: errors.New("down")}
	l := NewListener(newMemStore(configWith()), msgr, nil, &recordingSink{}, logger.Nop(), time.Second)
	l.idleWait = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Run(ctx), context.DeadlineExceeded)
}
