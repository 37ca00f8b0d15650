package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// GuardHandle proves that the session passed the human-verification check.
type GuardHandle struct {
	Token   string
	Score   float64
	ArmedAt time.Time
}

// Guard arms a human-verification check from the token produced by the widget.
type Guard interface {
	Arm(ctx context.Context, token string) (*GuardHandle, error)
}

// RecaptchaGuard checks widget tokens against the reCAPTCHA siteverify API.
type RecaptchaGuard struct {
	Secret    string
	VerifyURL string
	MinScore  float64 // v3 only, ignored when the response has no score
	HTTP      *http.Client
}

func NewRecaptchaGuard(secret string) *RecaptchaGuard {
	return &RecaptchaGuard{
		Secret:    secret,
		VerifyURL: recaptchaVerifyURL,
		MinScore:  0.5,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"`
	ErrorCodes []string `json:"error-codes"`
}

func (g *RecaptchaGuard) Arm(ctx context.Context, token string) (*GuardHandle, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrGuardNotReady
	}

	form := url.Values{}
	form.Set("secret", g.Secret)
	form.Set("response", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("recaptcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: recaptcha request failed: %v", ErrProviderError, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: recaptcha HTTP status %d", ErrProviderError, resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: recaptcha decode: %v", ErrProviderError, err)
	}
	if !body.Success {
		return nil, fmt.Errorf("%w: %s", ErrGuardRejected, strings.Join(body.ErrorCodes, ","))
	}

	handle := &GuardHandle{Token: token, Score: 1, ArmedAt: time.Now()}
	if body.Score != nil {
		handle.Score = *body.Score
		if handle.Score < g.MinScore {
			return nil, fmt.Errorf("%w: score %.2f", ErrGuardRejected, handle.Score)
		}
	}
	return handle, nil
}

// StaticGuard accepts any non-empty token. Used when no reCAPTCHA secret is
// configured and in tests.
type StaticGuard struct{}

func (StaticGuard) Arm(_ context.Context, token string) (*GuardHandle, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrGuardNotReady
	}
	return &GuardHandle{Token: token, Score: 1, ArmedAt: time.Now()}, nil
}
