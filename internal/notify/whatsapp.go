package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"umrahdesk/internal/config"
)

// WhatsAppClient sends templated text messages to pilgrims through the
// configured gateway. Delivery is best effort; callers never tie booking
// results to it.
type WhatsAppClient struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
}

func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendTextRequest struct {
	Sender  string `json:"sender,omitempty"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendText posts one message to the gateway. Non-2xx responses are errors so
// the worker's retry policy can kick in.
func (c *WhatsAppClient) SendText(ctx context.Context, phone, text string) error {
	if c.baseURL == "" {
		return fmt.Errorf("whatsapp gateway is not configured")
	}
	if phone == "" {
		return fmt.Errorf("recipient phone is empty")
	}

	body, err := json.Marshal(sendTextRequest{Sender: c.sender, Phone: phone, Message: text})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send/message", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
