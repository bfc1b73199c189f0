// Package subscription talks to the external subscriptions service.
package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client registers new accounts with the subscriptions service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type createSubscriberRequest struct {
	SubscriberID string `json:"subscriber_id"`
}

// CreateSubscriber registers the account as a subscriber. Called best-effort
// after registrations; any non-200 answer is an error for the caller to log.
func (c *Client) CreateSubscriber(ctx context.Context, userID string) error {
	body, err := json.Marshal(createSubscriberRequest{SubscriberID: userID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subscribers/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("create subscriber: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
