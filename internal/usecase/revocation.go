package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/aritranodejs/jwt-token-revoke/internal/core/port"
	"github.com/aritranodejs/jwt-token-revoke/internal/infra/logger"
	"github.com/aritranodejs/jwt-token-revoke/internal/infra/telemetry"
)

var (
	// ErrInvalidToken indicates the token cannot be decoded or carries no
	// expiry claim.
	ErrInvalidToken = errors.New("invalid token: missing or undecodable expiry claim")
)

const (
	defaultCleanupInterval = time.Hour
	cleanupRunTimeout      = 30 * time.Second
)

// RevocationOptions configures the revocation engine.
type RevocationOptions struct {
	// CleanupInterval is the period between scheduled cleanup runs.
	// Non-positive values fall back to one hour.
	CleanupInterval time.Duration
	// AutoCleanup starts the background cleanup scheduler at construction.
	AutoCleanup bool
}

// RevocationService revokes still-valid tokens by recording them in a
// blacklist store consulted on every protected request.
//
// The engine decodes a token's exp claim without verifying its signature:
// verification is the caller's separate responsibility, and revocation must
// work even for tokens the service cannot fully verify (for example a
// freshly-rejected token presented at logout).
type RevocationService struct {
	store   port.BlacklistStore
	log     *zap.Logger
	metrics *telemetry.Metrics
	parser  *jwt.Parser
	now     func() time.Time

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRevocationService constructs the engine over the supplied store and
// starts the cleanup scheduler when opts.AutoCleanup is set.
func NewRevocationService(store port.BlacklistStore, log *zap.Logger, opts RevocationOptions) *RevocationService {
	if log == nil {
		log = zap.NewNop()
	}

	interval := opts.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	s := &RevocationService{
		store:    store,
		log:      log,
		parser:   jwt.NewParser(),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	s.now = func() time.Time { return time.Now().UTC() }

	if opts.AutoCleanup {
		go s.runCleanupLoop()
	}

	return s
}

// WithClock overrides the internal clock for deterministic testing.
func (s *RevocationService) WithClock(clock func() time.Time) *RevocationService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithMetrics attaches revocation metric collectors.
func (s *RevocationService) WithMetrics(metrics *telemetry.Metrics) *RevocationService {
	s.metrics = metrics
	return s
}

// Blacklist records the token until its own expiry passes. It returns false
// without writing when the decoded expiry is already in the past, since such
// a token is unusable by ordinary verification anyway. Storage failures
// propagate: a revocation that silently did not take effect would be a
// security hole.
func (s *RevocationService) Blacklist(ctx context.Context, token string) (bool, error) {
	expiresAt, err := s.decodeExpiry(token)
	if err != nil {
		return false, err
	}

	if !expiresAt.After(s.now()) {
		return false, nil
	}

	if err := s.store.Set(ctx, token, expiresAt); err != nil {
		return false, fmt.Errorf("blacklist token: %w", err)
	}

	s.metrics.ObserveRevocation()
	return true, nil
}

// IsBlacklisted reports whether the token is currently revoked. An entry
// found expired is lazily deleted and reported as not blacklisted.
//
// Storage errors are deliberately swallowed and degrade to false: an
// unreachable revocation store must not block legitimate traffic. This
// fail-open branch trades strict enforcement for availability during a
// storage outage and is logged so outages stay visible.
func (s *RevocationService) IsBlacklisted(ctx context.Context, token string) bool {
	expiresAt, found, err := s.store.Get(ctx, token)
	if err != nil {
		s.log.Warn("blacklist check failed, failing open",
			zap.String("token", logger.MaskString(token)),
			zap.Error(err),
		)
		s.metrics.ObserveCheck(telemetry.CheckError)
		return false
	}

	if !found {
		s.metrics.ObserveCheck(telemetry.CheckMiss)
		return false
	}

	if !expiresAt.After(s.now()) {
		if _, err := s.store.Delete(ctx, token); err != nil {
			s.log.Warn("lazy removal of expired blacklist entry failed",
				zap.String("token", logger.MaskString(token)),
				zap.Error(err),
			)
		}
		s.metrics.ObserveCheck(telemetry.CheckExpired)
		return false
	}

	s.metrics.ObserveCheck(telemetry.CheckHit)
	return true
}

// Remove deletes the token's entry unconditionally and reports whether one
// existed. Storage failures propagate.
func (s *RevocationService) Remove(ctx context.Context, token string) (bool, error) {
	removed, err := s.store.Delete(ctx, token)
	if err != nil {
		return false, fmt.Errorf("remove blacklisted token: %w", err)
	}
	return removed, nil
}

// Cleanup purges entries whose expiry has passed and returns the count
// removed.
func (s *RevocationService) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.store.Cleanup(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup blacklist: %w", err)
	}
	s.metrics.ObserveCleanup(removed)
	return removed, nil
}

// Count returns the number of stored entries.
func (s *RevocationService) Count(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count blacklist entries: %w", err)
	}
	return count, nil
}

// StopCleanup cancels future scheduled cleanup runs. It is idempotent and
// safe to call when the scheduler never started; a run already in flight may
// still complete after it returns.
func (s *RevocationService) StopCleanup() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *RevocationService) runCleanupLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runScheduledCleanup()
		}
	}
}

// runScheduledCleanup isolates one run: its failure is logged and never
// stops future runs. Overlapping passes are harmless since purging expired
// entries is idempotent.
func (s *RevocationService) runScheduledCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupRunTimeout)
	defer cancel()

	removed, err := s.Cleanup(ctx)
	if err != nil {
		s.log.Error("scheduled blacklist cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("scheduled blacklist cleanup completed", zap.Int("removed", removed))
	}
}

func (s *RevocationService) decodeExpiry(token string) (time.Time, error) {
	if strings.TrimSpace(token) == "" {
		return time.Time{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}

	return expiresAt.Time, nil
}
