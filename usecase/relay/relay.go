// Package relay orchestrates the generic forwarding path: resolve the
// client session, replay its cookie jar upstream, capture any new cookies,
// and hand the upstream response back untouched.
package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/wallbox/relay/internal/odoo"
	"github.com/wallbox/relay/pkg/cookies"
	"github.com/wallbox/relay/repository"
)

type UseCase struct {
	sessions repository.SessionStore
	client   *odoo.Client
	logger   *zap.Logger
}

func New(sessions repository.SessionStore, client *odoo.Client, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		client:   client,
		logger:   logger,
	}
}

// ForwardInput is one inbound request to relay upstream.
type ForwardInput struct {
	Method        string
	TargetURL     string
	Body          []byte
	SessionID     string
	Authorization string
}

// ForwardOutput carries the upstream response plus the client session id
// to echo back, which may be newly minted.
type ForwardOutput struct {
	SessionID  string
	StatusCode int
	Body       []byte
}

// Forward relays one request. A failed upstream call never alters the
// stored cookie jar; upstream HTTP error statuses pass through unchanged.
func (uc *UseCase) Forward(ctx context.Context, in ForwardInput) (*ForwardOutput, error) {
	sess, isNew, err := uc.sessions.Resolve(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if isNew {
		uc.logger.Info("created new client session", zap.String("session_id", sess.ID))
	}

	result, err := uc.client.Forward(ctx, in.Method, in.TargetURL, in.Body, sess.Cookies, in.Authorization)
	if err != nil {
		return nil, err
	}

	if newCookies := cookies.Parse(result.SetCookies); len(newCookies) > 0 {
		if err := uc.sessions.MergeCookies(ctx, sess.ID, newCookies); err != nil {
			uc.logger.Warn("failed to store upstream cookies",
				zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	return &ForwardOutput{
		SessionID:  sess.ID,
		StatusCode: result.StatusCode,
		Body:       result.Body,
	}, nil
}

// Logout removes the relay-side session record immediately instead of
// leaving it to expire.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}
