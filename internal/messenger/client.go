package messenger

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sender delivers a text message to a normalized chat address.
type Sender interface {
	Send(ctx context.Context, address, text string) error
}

// Client talks to the WhatsApp HTTP gateway.
type Client struct {
	http         *resty.Client
	countryCode  string
	domainSuffix string
}

type sendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// NewClient creates a gateway client. countryCode is prepended to bare
// 10-digit national numbers; domainSuffix is appended to every address.
func NewClient(baseURL, token, countryCode, domainSuffix string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	if token != "" {
		httpClient.SetAuthToken(token)
	}

	return &Client{
		http:         httpClient,
		countryCode:  countryCode,
		domainSuffix: domainSuffix,
	}
}

// Normalize converts a raw phone number into the gateway address form:
// non-digits stripped, country code prepended to 10-digit numbers, the
// chat domain suffix appended.
func (c *Client) Normalize(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if len(number) == 10 {
		number = c.countryCode + number
	}
	return number + c.domainSuffix
}

// Send posts a message to the gateway. The address is normalized here
// so callers pass phone numbers as stored.
func (c *Client) Send(ctx context.Context, address, text string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{ChatID: c.Normalize(address), Text: text}).
		Post("/api/v1/messages")
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("gateway send status: %d", resp.StatusCode())
	}
	return nil
}
