package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"DeBrief/pkg/logger"
)

// Actor is a long-running loop owned by the supervisor.
type Actor interface {
	Name() string
	Run(ctx context.Context) error
}

// Supervisor keeps actors alive: an actor that returns or panics before
// shutdown is restarted after a backoff.
type Supervisor struct {
	actors  []Actor
	backoff time.Duration
	log     *logger.Logger
}

func NewSupervisor(backoff time.Duration, log *logger.Logger, actors ...Actor) *Supervisor {
	if backoff <= 0 {
		backoff = 10 * time.Second
	}
	return &Supervisor{actors: actors, backoff: backoff, log: log}
}

// Run blocks until ctx is done and every actor has returned.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, a := range s.actors {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			s.keepAlive(ctx, a)
		}(a)
	}
	wg.Wait()
}

func (s *Supervisor) keepAlive(ctx context.Context, a Actor) {
	for restarts := 0; ; restarts++ {
		err := runGuarded(ctx, a)
		if ctx.Err() != nil {
			s.log.Info("actor stopped", logger.String("actor", a.Name()))
			return
		}
		if err == nil {
			err = errors.New("returned without error")
		}
		s.log.Error("actor exited; restarting",
			logger.String("actor", a.Name()),
			logger.Int("restarts", restarts),
			logger.Duration("backoff", s.backoff),
			logger.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.backoff):
		}
	}
}

func runGuarded(ctx context.Context, a Actor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Run(ctx)
}
