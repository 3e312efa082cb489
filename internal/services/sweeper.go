// Package services hosts the relay's background work.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wallbox/relay/repository"
)

// Sweeper periodically evicts expired sessions from the store. It runs a
// plain scan-and-delete; per-request operations interleave with it freely.
type Sweeper struct {
	store    repository.SessionStore
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func NewSweeper(store repository.SessionStore, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (s *Sweeper) Start() {
	go s.loop()
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	removed, err := s.store.Sweep(context.Background(), time.Now())
	if err != nil {
		s.logger.Warn("session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
	}
}
