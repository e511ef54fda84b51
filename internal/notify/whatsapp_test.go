package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"umrahdesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppSendText(t *testing.T) {
	var got sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send/message", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewWhatsAppClient(config.WhatsAppConfig{
		Enabled: true,
		BaseURL: srv.URL,
		APIKey:  "secret",
		Sender:  "umrahdesk",
	})

	err := client.SendText(context.Background(), "+628111111111", "Assalamu'alaikum")
	require.NoError(t, err)
	assert.Equal(t, "+628111111111", got.Phone)
	assert.Equal(t, "Assalamu'alaikum", got.Message)
	assert.Equal(t, "umrahdesk", got.Sender)
}

func TestWhatsAppSendTextGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewWhatsAppClient(config.WhatsAppConfig{BaseURL: srv.URL})
	err := client.SendText(context.Background(), "+628111111111", "hello")
	assert.Error(t, err)
}

func TestWhatsAppSendTextValidation(t *testing.T) {
	client := NewWhatsAppClient(config.WhatsAppConfig{})
	assert.Error(t, client.SendText(context.Background(), "+628111111111", "hello"))

	client = NewWhatsAppClient(config.WhatsAppConfig{BaseURL: "http://localhost:1"})
	assert.Error(t, client.SendText(context.Background(), "", "hello"))
}
