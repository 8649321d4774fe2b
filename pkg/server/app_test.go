package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"DeBrief/internal/usecase"
	"DeBrief/pkg/config"
	applogger "DeBrief/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowActor struct {
	started  atomic.Bool
	finished atomic.Bool
}

func (a *slowActor) Name() string { return "slow" }

func (a *slowActor) Run(ctx context.Context) error {
	a.started.Store(true)
	<-ctx.Done()
	// simulate an in-flight tick draining after cancellation
	time.Sleep(20 * time.Millisecond)
	a.finished.Store(true)
	return ctx.Err()
}

func TestApp_RunWaitsForActors(t *testing.T) {
	actor := &slowActor{}
	sup := usecase.NewSupervisor(time.Second, applogger.Nop(), actor)
	app := New(config.Default(), applogger.Nop(), sup, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- app.Run(ctx) }()

	require.Eventually(t, actor.started.Load, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, actor.finished.Load())
}
