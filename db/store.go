package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kelgrave/credman/auth"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenRecordID pins the token row: there is exactly one current session.
const tokenRecordID = 1

// Store is the GORM-backed implementation of auth.TokenStorer.
// Use constructor NewStore to obtain an instance.
type Store struct{ db *gorm.DB }

// NewStore creates a Store. Accepts *gorm.DB to avoid global access.
func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) LoadTokens(ctx context.Context) (*auth.TokenSet, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}

	var rec TokenRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", tokenRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No session
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load token record")
		return nil, err
	}

	tokens := &auth.TokenSet{
		AccessToken:  auth.Token{Raw: rec.AccessToken},
		RefreshToken: rec.RefreshToken,
		ClockDrift:   rec.ClockDrift,
	}
	if rec.IDToken != "" {
		tokens.IDToken = &auth.Token{Raw: rec.IDToken}
	}
	if rec.SignInDetails != "" {
		var details auth.SignInDetails
		if err := json.Unmarshal([]byte(rec.SignInDetails), &details); err != nil {
			log.Error().Err(err).Msg("Failed to decode sign-in details")
			return nil, err
		}
		tokens.SignInDetails = &details
	}
	return tokens, nil
}

func (s *Store) LastAuthUser(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("store not initialized")
	}

	var rec TokenRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", tokenRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.LastAuthUser, nil
}

func (s *Store) StoreTokens(ctx context.Context, tokens *auth.TokenSet) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if tokens == nil || tokens.AccessToken.Raw == "" {
		return fmt.Errorf("refusing to store a token set without an access token")
	}

	rec := TokenRecord{
		ID:           tokenRecordID,
		AccessToken:  tokens.AccessToken.Raw,
		RefreshToken: tokens.RefreshToken,
		ClockDrift:   tokens.ClockDrift,
		LastAuthUser: tokens.AccessToken.Username(),
	}
	if tokens.IDToken != nil {
		rec.IDToken = tokens.IDToken.Raw
	}
	if tokens.SignInDetails != nil {
		encoded, err := json.Marshal(tokens.SignInDetails)
		if err != nil {
			return fmt.Errorf("failed to encode sign-in details: %w", err)
		}
		rec.SignInDetails = string(encoded)
	}

	// Full replacement: every column is overwritten, never merged.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "id_token", "refresh_token",
			"clock_drift", "sign_in_details", "last_auth_user",
		}),
	}).Create(&rec).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to store token record")
		return err
	}
	log.Info().Msg("Token record stored successfully")
	return nil
}

func (s *Store) ClearTokens(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if err := s.db.WithContext(ctx).Delete(&TokenRecord{}, "id = ?", tokenRecordID).Error; err != nil {
		log.Error().Err(err).Msg("Failed to clear token record")
		return err
	}
	log.Info().Msg("Token record cleared")
	return nil
}

func (s *Store) GetDeviceMetadata(ctx context.Context, username string) (*auth.DeviceMetadata, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}

	username, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, nil
	}

	var rec DeviceRecord
	err = s.db.WithContext(ctx).First(&rec, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load device record")
		return nil, err
	}
	return &auth.DeviceMetadata{
		DeviceKey:      rec.DeviceKey,
		DeviceGroupKey: rec.DeviceGroupKey,
		DevicePassword: rec.DevicePassword,
	}, nil
}

func (s *Store) ClearDeviceMetadata(ctx context.Context, username string) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}

	username, err := s.resolveUsername(ctx, username)
	if err != nil {
		return err
	}
	if username == "" {
		return nil
	}

	if err := s.db.WithContext(ctx).Delete(&DeviceRecord{}, "username = ?", username).Error; err != nil {
		log.Error().Err(err).Msg("Failed to clear device record")
		return err
	}
	return nil
}

// StoreDeviceMetadata records device metadata for a username. Sign-in flows
// call this; the orchestrator itself only reads and clears.
func (s *Store) StoreDeviceMetadata(ctx context.Context, username string, meta *auth.DeviceMetadata) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if username == "" {
		return fmt.Errorf("username is required to store device metadata")
	}
	if meta == nil {
		return fmt.Errorf("device metadata is required")
	}

	rec := DeviceRecord{
		Username:       username,
		DeviceKey:      meta.DeviceKey,
		DeviceGroupKey: meta.DeviceGroupKey,
		DevicePassword: meta.DevicePassword,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// resolveUsername maps an empty username to the last authenticated user.
func (s *Store) resolveUsername(ctx context.Context, username string) (string, error) {
	if username != "" {
		return username, nil
	}
	return s.LastAuthUser(ctx)
}
