package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wallbox/relay/domain"
)

type stubStore struct {
	swept   chan struct{}
	sweepFn func() (int, error)
}

func (s *stubStore) Resolve(context.Context, string) (*domain.ClientSession, bool, error) {
	return nil, false, nil
}
func (s *stubStore) MergeCookies(context.Context, string, map[string]string) error { return nil }
func (s *stubStore) Delete(context.Context, string) error                          { return nil }
func (s *stubStore) Sweep(context.Context, time.Time) (int, error) {
	select {
	case s.swept <- struct{}{}:
	default:
	}
	if s.sweepFn != nil {
		return s.sweepFn()
	}
	return 0, nil
}

func TestSweeper_RunsPeriodically(t *testing.T) {
	store := &stubStore{swept: make(chan struct{}, 1)}
	sweeper := NewSweeper(store, 10*time.Millisecond, nil)
	sweeper.Start()
	defer sweeper.Stop()

	select {
	case <-store.swept:
	case <-time.After(time.Second):
		t.Fatal("sweep was never triggered")
	}
}

func TestSweeper_SurvivesStoreErrors(t *testing.T) {
	store := &stubStore{
		swept:   make(chan struct{}, 1),
		sweepFn: func() (int, error) { return 0, errors.New("redis gone") },
	}
	sweeper := NewSweeper(store, time.Minute, nil)

	assert.NotPanics(t, func() { sweeper.sweep() })
}
