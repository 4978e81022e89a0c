package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jwalitptl/geonotify/internal/config"
)

// Service is the SMS gateway boundary.
type Service interface {
	Send(ctx context.Context, phone, message string) error
}

type gatewayClient struct {
	httpClient *http.Client
	url        string
	token      string
	sender     string
}

// NewGatewayClient builds the HTTP JSON gateway provider.
func NewGatewayClient(cfg config.SMSConfig) Service {
	return &gatewayClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        cfg.GatewayURL,
		token:      cfg.Token,
		sender:     cfg.Sender,
	}
}

type sendRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (c *gatewayClient) Send(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(sendRequest{
		To:   phone,
		From: c.sender,
		Body: message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SMS gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS gateway returned status %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode SMS gateway response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("SMS gateway rejected message: %s", result.Error)
	}
	return nil
}
