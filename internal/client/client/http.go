package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/logging"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// RequestIDHeader is set on every outbound request.
const RequestIDHeader = "X-Request-ID"

const maxResponseBytes = 4 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	breaker    BreakerSettings
	logger     logging.Logger
}

// WithHTTPClient replaces the underlying *http.Client (tests, proxies).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithBreakerSettings(s BreakerSettings) Option {
	return func(o *options) { o.breaker = s }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewHTTPClient builds a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	o := options{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    DefaultBreakerSettings(),
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    o.httpClient,
		logger:  o.logger,
	}
	c.breaker = newBreaker(o.breaker, func(from, to gobreaker.State) {
		c.logger.Warn(context.Background(), "api circuit breaker state changed", "from", from.String(), "to", to.String())
	})
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "login response carried no token", Err: ErrServer}
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", reg, nil)
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, v models.EmailVerification) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-email", "", v, nil)
}

func (c *HTTPClient) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/resend-otp", "", models.OTPRequest{Email: email}, nil)
}

func (c *HTTPClient) ListLinks(ctx context.Context, token string) ([]models.Link, error) {
	links := []models.Link{}
	if err := c.do(ctx, http.MethodGet, "/links", token, nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *HTTPClient) CreateLink(ctx context.Context, token string, link models.NewLink) (*models.Link, error) {
	var created models.Link
	if err := c.do(ctx, http.MethodPost, "/links", token, link, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) DeleteLink(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/links/"+url.PathEscape(id), token, nil, nil)
}

func (c *HTTPClient) IncrementClick(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodPost, "/links/"+url.PathEscape(id)+"/click", token, nil, nil)
}

func (c *HTTPClient) UpdateUsername(ctx context.Context, token string, username string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/user/username", token, models.UsernameChange{Username: username}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends one request through the circuit breaker and decodes the answer
// into out (which may be nil).
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	_, err = c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(req, out)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		c.logger.Debug(ctx, "api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
	}
	return err
}

func (c *HTTPClient) roundTrip(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	return decodeResponse(resp.StatusCode, data, out)
}

// envelope is the wrapper some API deployments put around every payload.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func decodeResponse(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		msg, code := errorMessage(body)
		return &APIError{Status: status, Message: msg, Code: code, Err: classifyStatus(status)}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			msg := env.Message
			if msg == "" {
				msg = "request failed"
			}
			return &APIError{Status: status, Message: msg, Code: env.Code, Err: ErrServer}
		}
		if out == nil {
			return nil
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return &APIError{Status: status, Message: "empty response", Err: ErrServer}
		}
		body = env.Data
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls "message" (or "error") out of an error body, falling
// back to the trimmed body text.
func errorMessage(body []byte) (string, string) {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message, e.Code
		}
		if e.Error != "" {
			return e.Error, e.Code
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text, ""
}
