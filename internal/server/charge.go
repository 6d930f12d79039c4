package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Charger debits a player's ticket balance when they take a seat. A failed
// charge rolls the reservation back.
type Charger interface {
	Charge(ctx context.Context, userUUID, ticketType string, amount int) error
}

// HTTPCharger calls the external credit service.
type HTTPCharger struct {
	url    string
	client *http.Client
}

func NewHTTPCharger(url string) *HTTPCharger {
	return &HTTPCharger{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPCharger) Charge(ctx context.Context, userUUID, ticketType string, amount int) error {
	body, err := json.Marshal(map[string]any{
		"user_uuid":   userUUID,
		"ticket_type": ticketType,
		"amount":      amount,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("charge service returned %s", resp.Status)
	}
	return nil
}
