package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kelgrave/credman/config"
	"github.com/kelgrave/credman/events"
	"github.com/kelgrave/credman/pkg/svcerr"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Construction-time contract failures. A Service is never built without its
// store and refresher, so there is no "used before configured" state to
// handle later.
var (
	ErrNoTokenStore     = errors.New("auth: token store is not configured")
	ErrNoTokenRefresher = errors.New("auth: token refresher is not configured")
)

// eventSource identifies this component in published events.
const eventSource = "credman-auth"

// Service orchestrates the credential lifecycle: when to read the store,
// when to refresh, when to persist, and when to drop the local session.
type Service struct {
	store     TokenStorer
	refresher TokenRefresher
	cfg       *config.AuthConfig

	notifier      events.Notifier
	waitForSignIn func(ctx context.Context) error
	now           func() time.Time
	group         *singleflight.Group
}

// Option customizes a Service at construction.
type Option func(*Service)

// WithNotifier sets the notifier refresh outcomes are published to.
func WithNotifier(n events.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithWaitForSignIn installs the hook that suspends GetTokens until an
// externally-tracked interactive sign-in completes. The default is a no-op.
func WithWaitForSignIn(wait func(ctx context.Context) error) Option {
	return func(s *Service) { s.waitForSignIn = wait }
}

// WithClock overrides the time source used for expiry evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSingleFlight dedupes concurrent refreshes per username. Without it,
// two callers observing expiry at the same time may each trigger their own
// refresh call; either way every caller gets a fully-replaced token set
// or no session.
func WithSingleFlight() Option {
	return func(s *Service) { s.group = &singleflight.Group{} }
}

// NewService builds a Service. The store and refresher are mandatory; the
// config may be nil or incomplete, in which case every GetTokens call
// resolves to "not signed in".
func NewService(store TokenStorer, refresher TokenRefresher, cfg *config.AuthConfig, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNoTokenStore
	}
	if refresher == nil {
		return nil, ErrNoTokenRefresher
	}
	s := &Service{
		store:         store,
		refresher:     refresher,
		cfg:           cfg,
		notifier:      events.Nop{},
		waitForSignIn: func(ctx context.Context) error { return nil },
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetTokensOptions tunes a single GetTokens call.
type GetTokensOptions struct {
	// ForceRefresh refreshes even when neither token is expired.
	ForceRefresh bool
}

// GetTokens returns the current session, refreshing it first when it is
// stale or when the caller forces it. A nil, nil return means there is no
// usable session and the user must sign in again.
func (s *Service) GetTokens(ctx context.Context, opts GetTokensOptions) (*Session, error) {
	if err := s.cfg.Validate(); err != nil {
		log.Debug().Err(err).Msg("Token management is not configured")
		return nil, nil
	}

	// A concurrently completing interactive sign-in must be observed,
	// not raced against: the hook finishes before the store is read.
	if err := s.waitForSignIn(ctx); err != nil {
		return nil, fmt.Errorf("failed waiting for in-flight sign-in: %w", err)
	}

	tokens, err := s.store.LoadTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	if tokens == nil {
		return nil, nil
	}

	username, err := s.store.LastAuthUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load last authenticated user: %w", err)
	}

	now := s.now()
	idExpired := tokens.IDToken != nil && isExpiredAt(now, tokens.IDToken.ExpiresAtMillis(), tokens.ClockDrift)
	accessExpired := isExpiredAt(now, tokens.AccessToken.ExpiresAtMillis(), tokens.ClockDrift)

	if opts.ForceRefresh || idExpired || accessExpired {
		tokens, err = s.refresh(ctx, tokens, username)
		if err != nil {
			return nil, err
		}
		if tokens == nil {
			return nil, nil
		}
	}

	session := &Session{
		AccessToken:   tokens.AccessToken.Raw,
		SignInDetails: tokens.SignInDetails,
	}
	if tokens.IDToken != nil {
		session.IDToken = tokens.IDToken.Raw
	}
	return session, nil
}

func (s *Service) refresh(ctx context.Context, current *TokenSet, username string) (*TokenSet, error) {
	if s.group == nil {
		return s.refreshTokens(ctx, current, username)
	}
	v, err, _ := s.group.Do(username, func() (any, error) {
		return s.refreshTokens(ctx, current, username)
	})
	tokens, _ := v.(*TokenSet)
	return tokens, err
}

// refreshTokens exchanges the current token set for a fresh one and persists
// the result as a full replacement. A nil, nil return means the session is
// gone and the caller is signed out.
func (s *Service) refreshTokens(ctx context.Context, current *TokenSet, username string) (*TokenSet, error) {
	log.Debug().Str("username", username).Msg("Refreshing tokens")

	fresh, err := s.refresher.Refresh(ctx, current, s.cfg, username)
	if err != nil {
		return s.handleRefreshFailure(ctx, err)
	}

	if err := s.store.StoreTokens(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save refreshed tokens: %w", err)
	}
	s.notifier.Publish(events.ChannelAuth, events.EventTokenRefresh, nil, eventSource)
	log.Info().Msg("Tokens refreshed and saved successfully.")
	return fresh, nil
}

// handleRefreshFailure classifies a refresh error and mutates the store
// accordingly. Network failures keep the session: it may still be valid and
// a retry can succeed. Everything else means the local session can no longer
// be trusted and is cleared before the failure event goes out.
func (s *Service) handleRefreshFailure(ctx context.Context, err error) (*TokenSet, error) {
	var serr *svcerr.Error
	if !errors.As(err, &serr) {
		// The refresher broke its contract; don't guess at session state.
		return nil, fmt.Errorf("token refresher returned a non-service error: %w", err)
	}

	if serr.Kind != svcerr.Network {
		if clearErr := s.store.ClearTokens(ctx); clearErr != nil {
			log.Error().Err(clearErr).Msg("Failed to clear tokens after refresh failure")
		}
	}
	s.notifier.Publish(events.ChannelAuth, events.EventTokenRefreshError, serr, eventSource)

	if serr.Kind == svcerr.NotAuthorized {
		log.Info().Str("code", serr.Code).Msg("Refresh was rejected, user must sign in again")
		return nil, nil
	}
	return nil, fmt.Errorf("token refresh failed: %w", err)
}

// ClearTokens drops the local session through the store. Sign-out flows call
// this; it performs no network revocation.
func (s *Service) ClearTokens(ctx context.Context) error {
	return s.store.ClearTokens(ctx)
}

// GetDeviceMetadata delegates to the store. An empty username means the last
// authenticated user.
func (s *Service) GetDeviceMetadata(ctx context.Context, username string) (*DeviceMetadata, error) {
	return s.store.GetDeviceMetadata(ctx, username)
}

// ClearDeviceMetadata delegates to the store. An empty username means the
// last authenticated user.
func (s *Service) ClearDeviceMetadata(ctx context.Context, username string) error {
	return s.store.ClearDeviceMetadata(ctx, username)
}
