package auth

import (
	"context"

	"github.com/kelgrave/credman/config"
)

// TokenStorer is the durable holder of the current token set, the last
// authenticated username, and per-username device metadata. Implementations
// are responsible for their own consistency under concurrent access; the
// orchestrator only ever writes full replacements or deletes.
type TokenStorer interface {
	LoadTokens(ctx context.Context) (*TokenSet, error)
	LastAuthUser(ctx context.Context) (string, error)
	StoreTokens(ctx context.Context, tokens *TokenSet) error
	ClearTokens(ctx context.Context) error

	// An empty username means the last authenticated user.
	GetDeviceMetadata(ctx context.Context, username string) (*DeviceMetadata, error)
	ClearDeviceMetadata(ctx context.Context, username string) error
}

// TokenRefresher performs the network exchange with the identity provider.
// Provider-side rejections must surface as *svcerr.Error values; anything
// else is treated as a broken collaborator and propagated unclassified.
type TokenRefresher interface {
	Refresh(ctx context.Context, current *TokenSet, cfg *config.AuthConfig, username string) (*TokenSet, error)
}

// RefreshFunc adapts a plain function to the TokenRefresher interface.
type RefreshFunc func(ctx context.Context, current *TokenSet, cfg *config.AuthConfig, username string) (*TokenSet, error)

func (f RefreshFunc) Refresh(ctx context.Context, current *TokenSet, cfg *config.AuthConfig, username string) (*TokenSet, error) {
	return f(ctx, current, cfg, username)
}
