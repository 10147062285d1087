package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jajuok/agripro-sub000/internal/config"
	"github.com/jajuok/agripro-sub000/internal/errs"
	"github.com/jajuok/agripro-sub000/internal/models"
)

// CreditBureauGateway requests a fresh credit report for a farmer. Provider
// selection and authentication live behind the external gateway service;
// this client only speaks its HTTP surface.
type CreditBureauGateway interface {
	RequestCreditCheck(ctx context.Context, farmerID string, nationalID *string) (*models.CreditCheck, error)
}

type CreditBureauClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCreditBureauClient(cfg config.CreditBureauConfig) *CreditBureauClient {
	return &CreditBureauClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			// The bureau call is the only external call that carries a
			// timeout; on expiry it is handled like any other outage.
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type creditCheckRequest struct {
	FarmerID   string  `json:"farmer_id"`
	NationalID *string `json:"national_id,omitempty"`
}

// RequestCreditCheck calls the bureau gateway synchronously. Failures map to
// the external_unavailable error kind so the orchestrator can fall back.
func (c *CreditBureauClient) RequestCreditCheck(ctx context.Context, farmerID string, nationalID *string) (*models.CreditCheck, error) {
	body, err := json.Marshal(creditCheckRequest{FarmerID: farmerID, NationalID: nationalID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credit check request: %w", err)
	}

	url := c.baseURL + "/credit/api/v1/checks"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, jsonBody(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build credit check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("credit bureau request failed", "farmer_id", farmerID, "error", err)
		return nil, errs.ExternalUnavailable("credit bureau unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.Warn("credit bureau returned error status", "farmer_id", farmerID, "status", resp.StatusCode)
		return nil, errs.ExternalUnavailable("credit bureau returned status %d", resp.StatusCode)
	}

	var check models.CreditCheck
	if err := json.NewDecoder(resp.Body).Decode(&check); err != nil {
		return nil, errs.ExternalUnavailable("failed to decode credit bureau response: %v", err)
	}

	check.FarmerID = farmerID
	check.Provenance = models.CreditProvenanceBureau
	if check.Completed && check.CompletedAt == nil {
		now := time.Now()
		check.CompletedAt = &now
	}

	return &check, nil
}
