package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/observability/metrics"
	"github.com/wavechat/wavechat-api/internal/observability/statsd"
	"github.com/wavechat/wavechat-api/internal/ports"
)

const (
	refreshFlagPrefix = "needs_refresh:"
	refreshFlagTTL    = time.Hour
)

// RefreshServiceOptions groups dependencies for RefreshService.
type RefreshServiceOptions struct {
	Flags    ports.FlagStore
	Users    ports.UserRepository
	Sessions ports.SessionStore
}

// RefreshService decides, per user, whether a privilege change is applied to
// the current process's session synchronously or deferred through a
// distributed flag that another process picks up on the user's next request.
type RefreshService struct {
	flags    ports.FlagStore
	users    ports.UserRepository
	sessions ports.SessionStore

	logger *slog.Logger
	sink   statsd.Sink
}

// NewRefreshService constructs a new RefreshService.
func NewRefreshService(opts RefreshServiceOptions, logger *slog.Logger, sink statsd.Sink) *RefreshService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshService{
		flags:    opts.Flags,
		users:    opts.Users,
		sessions: opts.Sessions,
		logger:   logger,
		sink:     sink,
	}
}

// MarkForRefresh applies a privilege change to targetUserID. When the change
// targets the identity bound to sess, the session snapshot is reloaded and
// saved synchronously and any stale flag is cleared. Otherwise a distributed
// flag is set for another process to observe; the local session is untouched.
func (s *RefreshService) MarkForRefresh(ctx context.Context, targetUserID string, sess *domainauth.Session) error {
	if sess != nil && sess.User.ID == targetUserID {
		if err := s.reloadAndSave(ctx, sess); err != nil {
			metrics.EmitSessionRefresh(s.sink, metrics.ResultError)
			return err
		}
		if err := s.ClearFlag(ctx, targetUserID); err != nil {
			return err
		}
		metrics.EmitSessionRefresh(s.sink, metrics.ResultSuccess)
		return nil
	}

	if err := s.flags.Set(ctx, refreshFlagKey(targetUserID), []byte("1"), refreshFlagTTL); err != nil {
		// Flag-write failures propagate: the caller must know the mark
		// did not take effect.
		return apperrors.Wrap(err, "mark session for refresh")
	}
	return nil
}

// ShouldRefresh reports whether the distributed flag for userID exists.
// Store read errors fail open so an unavailable flag store never blocks
// authentication.
func (s *RefreshService) ShouldRefresh(ctx context.Context, userID string) bool {
	ok, err := s.flags.Exists(ctx, refreshFlagKey(userID))
	if err != nil {
		s.logger.Warn("refresh flag check failed, assuming fresh session",
			"user_id", userID, "error", err)
		return false
	}
	return ok
}

// ClearFlag removes the distributed flag for userID. Idempotent.
func (s *RefreshService) ClearFlag(ctx context.Context, userID string) error {
	if _, err := s.flags.Delete(ctx, refreshFlagKey(userID)); err != nil {
		return apperrors.Wrap(err, "clear refresh flag")
	}
	return nil
}

// RefreshUserSession is the entry point for privilege-change callers: the
// same-identity fast path refreshes sess locally, everything else delegates
// to MarkForRefresh.
func (s *RefreshService) RefreshUserSession(ctx context.Context, targetUserID, currentUserID string, sess *domainauth.Session) error {
	if targetUserID == currentUserID && sess != nil {
		if err := s.reloadAndSave(ctx, sess); err != nil {
			return err
		}
		return s.ClearFlag(ctx, targetUserID)
	}
	return s.MarkForRefresh(ctx, targetUserID, sess)
}

// reloadAndSave re-reads the authoritative user record into the session
// snapshot and persists the session, waiting for store acknowledgment.
// A failed save here is a genuine authentication failure.
func (s *RefreshService) reloadAndSave(ctx context.Context, sess *domainauth.Session) error {
	user, err := s.users.GetByID(ctx, sess.User.ID)
	if err != nil {
		return fmt.Errorf("reload user for session refresh: %w", err)
	}

	sess.User = domainauth.SessionUser{ID: user.ID, Role: user.Role}
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save refreshed session: %w", err)
	}
	return nil
}

func refreshFlagKey(userID string) string {
	return refreshFlagPrefix + userID
}
