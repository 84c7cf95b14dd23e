package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/guard"
)

const launchCallTimeout = 10 * time.Second

// LaunchClient calls the Provider's own launch endpoint once the Casino
// has created a session, signing the request under CASINO_SECRET. A
// circuit breaker guards the endpoint: repeated failures trip it open so
// a degraded provider does not stall every launch.
type LaunchClient struct {
	httpClient *http.Client
	baseURL    string
	secret     string
	breaker    *guard.CircuitBreaker
	logger     *slog.Logger
}

// NewLaunchClient creates a launch client for the given provider base URL.
func NewLaunchClient(baseURL, secret string, breaker *guard.CircuitBreaker, logger *slog.Logger) *LaunchClient {
	return &LaunchClient{
		httpClient: &http.Client{Timeout: launchCallTimeout},
		baseURL:    baseURL,
		secret:     secret,
		breaker:    breaker,
		logger:     logger,
	}
}

// ProviderLaunchRequest is the body sent to the provider's launch endpoint.
type ProviderLaunchRequest struct {
	SessionID    string `json:"sessionId"`
	SessionToken string `json:"sessionToken"`
	UserID       string `json:"userId"`
	GameID       string `json:"gameId"`
	Currency     string `json:"currency"`
}

// ProviderLaunchResponse is the provider's acknowledgement of a launch.
type ProviderLaunchResponse struct {
	Success           bool   `json:"success"`
	ProviderSessionID string `json:"providerSessionId"`
}

// NotifyLaunch signs and sends a launch notification to the provider.
// Outbound failure is logged and swallowed by the caller per the callback
// surface's design: the session stays valid without a provider session id.
func (c *LaunchClient) NotifyLaunch(ctx context.Context, req ProviderLaunchRequest) (*ProviderLaunchResponse, error) {
	breakerKey := "provider_launch:" + c.baseURL
	guardResult := c.breaker.Check(ctx, breakerKey)
	if !guardResult.Allowed {
		return nil, domain.ErrCasinoAPIError(fmt.Errorf("%s", guardResult.Reason))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal launch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/provider/launchGame", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build launch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(CasinoSignatureHeader, Sign(body, c.secret))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrCasinoAPIError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrCasinoAPIError(err)
	}

	if resp.StatusCode >= 500 {
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrCasinoAPIError(fmt.Errorf("provider returned %d", resp.StatusCode))
	}

	var out ProviderLaunchResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrCasinoAPIError(fmt.Errorf("decode provider response: %w", err))
	}

	c.breaker.RecordSuccess(breakerKey)
	return &out, nil
}
