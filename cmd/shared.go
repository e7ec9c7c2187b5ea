package cmd

import (
	"fmt"
	"time"

	"github.com/kelgrave/credman/auth"
	"github.com/kelgrave/credman/client"
	"github.com/kelgrave/credman/config"
	"github.com/kelgrave/credman/db"
	"github.com/kelgrave/credman/events"
)

// buildService wires the orchestrator from its collaborators: env config,
// the GORM-backed store, the HTTP refresher, and an event hub for observers.
func buildService() (*auth.Service, *events.Hub, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	hub := events.NewHub()
	svc, err := auth.NewService(
		db.NewStore(db.GetDB()),
		client.New(),
		cfg,
		auth.WithNotifier(hub),
		auth.WithSingleFlight(),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, hub, nil
}

// formatExpiry renders a token expiry instant for table output.
func formatExpiry(expiresAtMillis int64) string {
	if expiresAtMillis == 0 {
		return "no expiry claim"
	}
	return time.UnixMilli(expiresAtMillis).Local().Format(time.RFC3339)
}

// formatValidity renders the freshness verdict for table output.
func formatValidity(expiresAtMillis, driftSeconds int64) string {
	if auth.IsExpired(expiresAtMillis, driftSeconds) {
		return "expired"
	}
	return "valid"
}
