package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kelgrave/credman/auth"
	"github.com/kelgrave/credman/config"
	"github.com/kelgrave/credman/pkg/svcerr"
	"github.com/rs/zerolog/log"
)

// Request framing for the user-pool refresh call (AWS JSON protocol).
const (
	refreshTarget   = "AWSCognitoIdentityProviderService.InitiateAuth"
	jsonContentType = "application/x-amz-json-1.1"
	refreshAuthFlow = "REFRESH_TOKEN_AUTH"
)

// Client performs the refresh exchange against the identity provider.
// It is the only producer of *svcerr.Error values: every provider-side
// rejection and transport failure it reports is classified.
type Client struct {
	httpClient *http.Client
}

// New creates a Client with a sane request timeout.
func New() *Client {
	return &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// NewWithHTTPClient creates a Client with a caller-supplied http.Client.
func NewWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

type initiateAuthRequest struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

type initiateAuthResponse struct {
	AuthenticationResult struct {
		AccessToken string `json:"AccessToken"`
		IDToken     string `json:"IdToken"`
		ExpiresIn   int64  `json:"ExpiresIn"`
	} `json:"AuthenticationResult"`
}

type providerError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// Refresh exchanges the current token set for a fresh one. The refresh token
// and sign-in details carry over unchanged; the provider does not rotate the
// refresh token on this flow.
func (c *Client) Refresh(ctx context.Context, current *auth.TokenSet, cfg *config.AuthConfig, username string) (*auth.TokenSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, svcerr.New(svcerr.Other, "ResourceNotFoundException", err.Error(), err)
	}
	if current == nil || current.RefreshToken == "" {
		// Nothing to exchange; the session is unrecoverable locally.
		return nil, svcerr.FromCode("NotAuthorizedException", "no refresh token available")
	}

	payload, err := json.Marshal(initiateAuthRequest{
		AuthFlow: refreshAuthFlow,
		ClientID: cfg.UserPool.ClientID,
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": current.RefreshToken,
		},
	})
	if err != nil {
		return nil, svcerr.New(svcerr.Other, "SerializationException", "failed to encode refresh request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.UserPool.URL(), bytes.NewReader(payload))
	if err != nil {
		return nil, svcerr.NewNetwork(err)
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("X-Amz-Target", refreshTarget)

	log.Debug().Str("url", cfg.UserPool.URL()).Str("username", username).Msg("Sending token refresh request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Token refresh request failed to reach the provider")
		return nil, svcerr.NewNetwork(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, svcerr.NewNetwork(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeProviderError(resp.StatusCode, body)
	}

	var result initiateAuthResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, svcerr.New(svcerr.Other, "SerializationException", "failed to decode refresh response", err)
	}
	if result.AuthenticationResult.AccessToken == "" {
		return nil, svcerr.New(svcerr.Other, "SerializationException", "refresh response carried no access token", nil)
	}

	fresh := &auth.TokenSet{
		AccessToken:   auth.Token{Raw: result.AuthenticationResult.AccessToken},
		RefreshToken:  current.RefreshToken,
		ClockDrift:    current.ClockDrift,
		SignInDetails: current.SignInDetails,
	}
	if result.AuthenticationResult.IDToken != "" {
		fresh.IDToken = &auth.Token{Raw: result.AuthenticationResult.IDToken}
	}
	log.Debug().Msg("Token refresh request succeeded")
	return fresh, nil
}

// decodeProviderError turns a non-OK provider response into a classified
// service error. Responses without the expected error shape become Other.
func decodeProviderError(status int, body []byte) *svcerr.Error {
	var perr providerError
	if err := json.Unmarshal(body, &perr); err == nil && perr.Type != "" {
		log.Debug().Str("code", perr.Type).Int("status", status).Msg("Provider rejected the refresh request")
		return svcerr.FromCode(perr.Type, perr.Message)
	}
	msg := fmt.Sprintf("unexpected HTTP status %d: %s", status, strings.TrimSpace(string(body)))
	log.Error().Int("status", status).Msg("Provider returned an unrecognized error response")
	return svcerr.New(svcerr.Other, "UnknownError", msg, nil)
}
