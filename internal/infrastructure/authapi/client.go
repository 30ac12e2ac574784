package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/admin-session-gate/internal/config"
	"github.com/admin-session-gate/internal/domain"
)

const (
	loginRequestPath = "/api/admin/login-request"
	verifyOTPPath    = "/api/admin/verify-otp"

	maxResponseBytes = 64 << 10
)

// Client calls the external Authentication Service.
// It never retries: a failed call is reported and the user resubmits.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return NewClientWithHTTP(cfg.AuthServiceURL, &http.Client{Timeout: cfg.AuthServiceTimeout})
}

// NewClientWithHTTP builds a client over an existing *http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc.Timeout == 0 {
		hc.Timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, httpClient: hc}
}

type loginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// RequestLogin submits the primary credentials. On 2xx the service has
// issued an OTP out of band.
func (c *Client) RequestLogin(ctx context.Context, email, password string) (*domain.AuthReply, error) {
	return c.post(ctx, loginRequestPath, loginRequestBody{Email: email, Password: password})
}

// VerifyOTP submits the one-time passcode for email.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*domain.AuthReply, error) {
	return c.post(ctx, verifyOTPPath, verifyOTPBody{Email: email, OTP: otp})
}

// post returns a *domain.RejectedError for non-2xx answers and wraps
// domain.ErrUnreachable when no answer arrived at all.
func (c *Client) post(ctx context.Context, path string, body interface{}) (*domain.AuthReply, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w: %w", path, domain.ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w: %w", path, domain.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w: %w", path, domain.ErrUnreachable, err)
	}
	var reply domain.AuthReply
	// The body is optional on both outcomes; a non-JSON body is treated as empty.
	_ = json.Unmarshal(raw, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.RejectedError{StatusCode: resp.StatusCode, Message: reply.Message}
	}
	return &reply, nil
}
