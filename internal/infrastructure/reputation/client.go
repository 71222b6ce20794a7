package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sourceverifier/internal/ports"
)

// Client posts user actions to the external reputation service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.ReputationClient = (*Client)(nil)

// New creates a reusable HTTP client.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

// AwardAction notifies the reputation system that userID performed action.
// Callers treat failures as log-only; the award is one-way.
func (c *Client) AwardAction(ctx context.Context, userID, action string) error {
	if c.endpoint == "" {
		return fmt.Errorf("reputation client misconfigured")
	}

	body, err := json.Marshal(map[string]string{
		"userId": userID,
		"action": action,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("reputation service returned %s", resp.Status)
	}

	return nil
}
