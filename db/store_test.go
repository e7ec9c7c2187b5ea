package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/kelgrave/credman/auth"
	"github.com/kelgrave/credman/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *db.Store {
	t.Helper()
	db.Path = filepath.Join(t.TempDir(), "credentials.db")
	require.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })
	return db.NewStore(db.GetDB())
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func sampleTokenSet(t *testing.T) *auth.TokenSet {
	t.Helper()
	id := auth.Token{Raw: signedToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
		"sub": "uuid-alice",
	})}
	return &auth.TokenSet{
		IDToken: &id,
		AccessToken: auth.Token{Raw: signedToken(t, jwt.MapClaims{
			"exp":      time.Now().Add(time.Hour).Unix(),
			"username": "alice",
		})},
		RefreshToken:  "refresh-1",
		ClockDrift:    42,
		SignInDetails: &auth.SignInDetails{LoginID: "alice", AuthFlowType: "USER_SRP_AUTH"},
	}
}

func TestStore_LoadTokensEmpty(t *testing.T) {
	store := setupStore(t)

	tokens, err := store.LoadTokens(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tokens)

	user, err := store.LastAuthUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, user)
}

func TestStore_StoreAndLoadRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	tokens := sampleTokenSet(t)

	require.NoError(t, store.StoreTokens(ctx, tokens))

	loaded, err := store.LoadTokens(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, tokens.AccessToken.Raw, loaded.AccessToken.Raw)
	require.NotNil(t, loaded.IDToken)
	assert.Equal(t, tokens.IDToken.Raw, loaded.IDToken.Raw)
	assert.Equal(t, "refresh-1", loaded.RefreshToken)
	assert.Equal(t, int64(42), loaded.ClockDrift)
	require.NotNil(t, loaded.SignInDetails)
	assert.Equal(t, "alice", loaded.SignInDetails.LoginID)

	user, err := store.LastAuthUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", user, "last auth user comes from the access token claims")
}

func TestStore_StoreTokensFullReplacement(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreTokens(ctx, sampleTokenSet(t)))

	// The replacement set has no ID token and no sign-in details; the old
	// values must not leak through.
	replacement := &auth.TokenSet{
		AccessToken: auth.Token{Raw: signedToken(t, jwt.MapClaims{
			"exp":      time.Now().Add(2 * time.Hour).Unix(),
			"username": "bob",
		})},
		RefreshToken: "refresh-2",
	}
	require.NoError(t, store.StoreTokens(ctx, replacement))

	loaded, err := store.LoadTokens(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Nil(t, loaded.IDToken, "old ID token must not survive a replacement")
	assert.Nil(t, loaded.SignInDetails, "old sign-in details must not survive a replacement")
	assert.Equal(t, "refresh-2", loaded.RefreshToken)
	assert.Zero(t, loaded.ClockDrift)

	user, err := store.LastAuthUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
}

func TestStore_StoreTokensRejectsMissingAccessToken(t *testing.T) {
	store := setupStore(t)

	assert.Error(t, store.StoreTokens(context.Background(), nil))
	assert.Error(t, store.StoreTokens(context.Background(), &auth.TokenSet{}))
}

func TestStore_ClearTokens(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreTokens(ctx, sampleTokenSet(t)))
	require.NoError(t, store.ClearTokens(ctx))

	tokens, err := store.LoadTokens(ctx)
	require.NoError(t, err)
	assert.Nil(t, tokens)

	user, err := store.LastAuthUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, user, "clearing tokens drops the username too")
}

func TestStore_DeviceMetadata(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	meta := &auth.DeviceMetadata{DeviceKey: "device-1", DeviceGroupKey: "group-1", DevicePassword: "secret"}
	require.NoError(t, store.StoreDeviceMetadata(ctx, "alice", meta))

	got, err := store.GetDeviceMetadata(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	// Unknown user has no metadata.
	got, err = store.GetDeviceMetadata(ctx, "mallory")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.ClearDeviceMetadata(ctx, "alice"))
	got, err = store.GetDeviceMetadata(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_DeviceMetadataDefaultsToLastAuthUser(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreTokens(ctx, sampleTokenSet(t))) // last auth user: alice
	meta := &auth.DeviceMetadata{DeviceKey: "device-1"}
	require.NoError(t, store.StoreDeviceMetadata(ctx, "alice", meta))

	got, err := store.GetDeviceMetadata(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	require.NoError(t, store.ClearDeviceMetadata(ctx, ""))
	got, err = store.GetDeviceMetadata(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_DeviceMetadataNoSession(t *testing.T) {
	store := setupStore(t)

	got, err := store.GetDeviceMetadata(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got, "no session means no device metadata to resolve")
}
