package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jajuok/agripro-sub000/internal/config"
	"github.com/jajuok/agripro-sub000/internal/errs"
	"github.com/jajuok/agripro-sub000/internal/models"
)

// ProfileGateway reads farmer and farm snapshots from the profile service.
type ProfileGateway interface {
	GetFarmer(ctx context.Context, farmerID string) (*models.FarmerSnapshot, error)
	GetFarm(ctx context.Context, farmID string) (*models.FarmSnapshot, error)
}

type ProfileClient struct {
	baseURL string
	client  *http.Client
}

func NewProfileClient(cfg config.ProfileServiceConfig) *ProfileClient {
	return &ProfileClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ProfileClient) GetFarmer(ctx context.Context, farmerID string) (*models.FarmerSnapshot, error) {
	var farmer models.FarmerSnapshot
	if err := c.getJSON(ctx, "/profile/api/v1/farmers/"+farmerID, &farmer); err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (c *ProfileClient) GetFarm(ctx context.Context, farmID string) (*models.FarmSnapshot, error) {
	var farm models.FarmSnapshot
	if err := c.getJSON(ctx, "/profile/api/v1/farms/"+farmID, &farm); err != nil {
		return nil, err
	}
	return &farm, nil
}

func (c *ProfileClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build profile request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.ExternalUnavailable("profile service unreachable: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errs.NotFound("profile resource %s", path)
	default:
		return errs.ExternalUnavailable("profile service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode profile response: %w", err)
	}
	return nil
}

// jsonBody wraps a marshalled payload for http.NewRequestWithContext.
func jsonBody(b []byte) io.Reader {
	return bytes.NewReader(b)
}
