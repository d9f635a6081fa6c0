package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Gateway delivers outbound WhatsApp messages. Implementations must be
// safe for concurrent use.
type Gateway interface {
	SendWhatsApp(to string, body string) error
	IsConfigured() bool
}

// TwilioGateway implements WhatsApp sending via the Twilio Messages API
type TwilioGateway struct {
	apiBaseURL string
	accountSID string
	authToken  string
	fromNumber string
	client     *http.Client
}

// TwilioConfig holds configuration for the Twilio WhatsApp gateway
type TwilioConfig struct {
	APIBaseURL string
	AccountSID string
	AuthToken  string
	FromNumber string
}

// NewTwilioGateway creates a new Twilio WhatsApp gateway client
func NewTwilioGateway(config TwilioConfig) *TwilioGateway {
	return &TwilioGateway{
		apiBaseURL: strings.TrimRight(config.APIBaseURL, "/"),
		accountSID: config.AccountSID,
		authToken:  config.AuthToken,
		fromNumber: config.FromNumber,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured reports whether the gateway has the credentials it needs
// to send. An unconfigured gateway lets the server run locally without
// Twilio credentials; callers are expected to skip sends.
func (g *TwilioGateway) IsConfigured() bool {
	return g.accountSID != "" && g.authToken != "" && g.fromNumber != ""
}

// messageResponse is the subset of the Twilio message resource we read
type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"message"`
}

// SendWhatsApp sends a WhatsApp message to the given phone number
func (g *TwilioGateway) SendWhatsApp(to string, body string) error {
	if !g.IsConfigured() {
		return fmt.Errorf("whatsapp gateway is not configured")
	}

	formattedTo, err := FormatWhatsAppNumber(to)
	if err != nil {
		return fmt.Errorf("failed to format recipient number: %w", err)
	}

	form := url.Values{}
	form.Set("From", formatWhatsAppPrefix(g.fromNumber))
	form.Set("To", formattedTo)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.apiBaseURL, g.accountSID)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create message request: %w", err)
	}

	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read message response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msgResp messageResponse
		if err := json.Unmarshal(respBody, &msgResp); err == nil && msgResp.ErrorMessage != "" {
			return fmt.Errorf("message sending failed (HTTP %d): %s", resp.StatusCode, msgResp.ErrorMessage)
		}
		return fmt.Errorf("message sending failed (HTTP %d)", resp.StatusCode)
	}

	var msgResp messageResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return fmt.Errorf("failed to parse message response: %w", err)
	}

	if msgResp.Status == "failed" || msgResp.Status == "undelivered" {
		return fmt.Errorf("message delivery failed with status %q", msgResp.Status)
	}
	return nil
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// FormatWhatsAppNumber converts a phone number to Twilio's WhatsApp
// address format.
// Input: "+94771234567", "94771234567" or "whatsapp:+94771234567"
// Output: "whatsapp:+94771234567"
func FormatWhatsAppNumber(phone string) (string, error) {
	phone = strings.TrimPrefix(phone, "whatsapp:")
	digits := nonDigits.ReplaceAllString(phone, "")

	// E.164 is at most 15 digits; country code plus subscriber number
	// is never shorter than 8 in practice
	if len(digits) < 8 || len(digits) > 15 {
		return "", fmt.Errorf("invalid phone number length: %d digits", len(digits))
	}

	return "whatsapp:+" + digits, nil
}

func formatWhatsAppPrefix(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	if strings.HasPrefix(phone, "+") {
		return "whatsapp:" + phone
	}
	return "whatsapp:+" + phone
}
