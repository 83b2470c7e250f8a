// Package captcha verifies client-supplied hCaptcha tokens against the
// siteverify endpoint. Every pledge re-verifies; results are never cached or
// retried.
package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	dErrors "pledgeboard/pkg/domain-errors"
)

const defaultVerifyURL = "https://hcaptcha.com/siteverify"

// Client calls the remote verification service.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secret     string
}

// Option configures a Client.
type Option func(*Client)

// WithVerifyURL overrides the verification endpoint. Used in tests.
func WithVerifyURL(u string) Option {
	return func(c *Client) {
		c.verifyURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New constructs a verification client with a short request timeout.
func New(secret string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		verifyURL:  defaultVerifyURL,
		secret:     secret,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type verifyResponse struct {
	Success bool `json:"success"`
}

// Verify checks token with the remote service. Failures classify into exactly
// two kinds: captcha_unreachable for any transport or protocol problem and
// captcha_rejected when the service explicitly refuses the token.
func (c *Client) Verify(ctx context.Context, token string) error {
	unreachable := dErrors.New(dErrors.CodeCaptchaUnreachable, "cannot reach captcha service")

	form := url.Values{}
	form.Set("response", token)
	form.Set("secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return unreachable
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unreachable
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return unreachable
	}

	if !body.Success {
		return dErrors.New(dErrors.CodeCaptchaRejected, "captcha failed")
	}
	return nil
}
