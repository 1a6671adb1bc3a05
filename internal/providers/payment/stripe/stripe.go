package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thrivekit/thrivekit/internal/providers/payment/domain"
)

const defaultBaseURL = "https://api.stripe.com"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Retrieve(ctx context.Context, chargeID string) (*domain.Charge, error) {
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, domain.ErrChargeNotFound
	}

	url := fmt.Sprintf("%s/v1/charges/%s", c.baseURL, chargeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrChargeNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderError, resp.StatusCode)
	}

	var charge domain.Charge
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProviderError, err)
	}
	if strings.TrimSpace(charge.ID) == "" {
		return nil, fmt.Errorf("%w: charge id missing in response", domain.ErrProviderError)
	}

	return &charge, nil
}
