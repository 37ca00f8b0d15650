package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSSender posts to a Twilio-compatible Messages endpoint:
// {BaseURL}/Accounts/{AccountSID}/Messages.json with basic auth.
type SMSSender struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	HTTP       *http.Client
}

func NewSMSSender(baseURL, accountSID, authToken, from string) *SMSSender {
	return &SMSSender{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSSender) SendSMS(ctx context.Context, to, body string) error {
	if s.AccountSID == "" || s.From == "" {
		return fmt.Errorf("sms: %w", ErrNotConfigured)
	}
	if to == "" {
		return fmt.Errorf("sms: %w", ErrNoRecipient)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.BaseURL, url.PathEscape(s.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("sms: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
