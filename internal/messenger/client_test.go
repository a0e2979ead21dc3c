package messenger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	c := NewClient("http://localhost", "", "57", "@c.us")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare national number", "3001234567", "573001234567@c.us"},
		{"formatted national number", "300-123-4567", "573001234567@c.us"},
		{"spaces and parens", "(300) 123 4567", "573001234567@c.us"},
		{"already has country code", "573001234567", "573001234567@c.us"},
		{"international prefix", "+57 300 123 4567", "573001234567@c.us"},
		{"short number left alone", "12345", "12345@c.us"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Normalize(tt.raw))
		})
	}
}

func TestSend(t *testing.T) {
	var got sendRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/messages", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret-token", "57", "@c.us")

	err := c.Send(context.Background(), "300-123-4567", "Dear Ana, your purchase is registered.")
	require.NoError(t, err)

	assert.Equal(t, "573001234567@c.us", got.ChatID)
	assert.Equal(t, "Dear Ana, your purchase is registered.", got.Text)
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestSendGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", "57", "@c.us")

	err := c.Send(context.Background(), "3001234567", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
