// Package api is the HTTP client for the exam administration backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/me/examdesk/pkg/model"
)

// DefaultTimeout bounds every request; a hung backend becomes a
// NETWORK_FAILURE instead of an endless wait.
const DefaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Invalidator is implemented by token sources that can tear the session
// down when the backend answers 401.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Client is an HTTP client for the backend REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger

	tokens   TokenSource
	timeout  time.Duration
	validate *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// NewClient creates a backend client. tokens may be nil for a client that
// only calls public endpoints (login, register).
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		Logger:     logger.With("component", "api"),
		tokens:     tokens,
		timeout:    DefaultTimeout,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one backend call.
type request struct {
	op          string
	method      string
	path        string
	auth        bool
	body        io.Reader
	contentType string
}

// jsonRequest builds a request with a JSON-encoded body (nil for none).
func jsonRequest(op, method, path string, auth bool, body any) (request, error) {
	req := request{op: op, method: method, path: path, auth: auth}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return req, model.NewDecodeError(op, fmt.Errorf("marshal request: %w", err))
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// errorBody is the error envelope the backend uses for non-2xx answers.
type errorBody struct {
	Message string             `json:"message"`
	Error   string             `json:"error"`
	Errors  []model.FieldError `json:"errors"`
}

// do performs req and returns the raw response body of a 2xx answer.
// Every failure is an *model.APIError.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.BaseURL + req.path
	httpReq, err := http.NewRequestWithContext(ctx, req.method, url, req.body)
	if err != nil {
		return nil, model.NewNetworkError(req.op, fmt.Errorf("create request: %w", err))
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	if req.auth {
		if c.tokens == nil {
			return nil, model.NewValidationError(req.op, "no session configured")
		}
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &model.APIError{Kind: model.KindValidation, Op: req.op, Message: err.Error(), Err: err}
		}
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}

	logger := c.Logger.With("op", req.op, "request_id", requestID)
	logger.Debug("HTTP request", "method", req.method, "url", url)

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &model.APIError{
				Kind:    model.KindNetwork,
				Op:      req.op,
				Message: fmt.Sprintf("request timed out after %s", c.timeout),
				Err:     err,
			}
		}
		return nil, model.NewNetworkError(req.op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewNetworkError(req.op, fmt.Errorf("read response: %w", err))
	}

	logger.Debug("HTTP response", "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseErrorBody(req.op, resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized && req.auth {
			if inv, ok := c.tokens.(Invalidator); ok {
				logger.Warn("backend rejected token, ending session")
				inv.Invalidate(ctx)
			}
		}
		return nil, apiErr
	}
	return respBody, nil
}

// parseErrorBody turns a non-2xx answer into an HTTP_ERROR, keeping the
// backend's {errors:[{msg}]} entries when present.
func parseErrorBody(op string, status int, body []byte) *model.APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 || strings.HasPrefix(msg, "<") {
			msg = ""
		}
		return model.NewHTTPError(op, status, msg)
	}
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	return model.NewHTTPError(op, status, msg, eb.Errors...)
}

// doJSON performs req and decodes a 2xx body into out (skipped when out is
// nil or the body is empty).
func (c *Client) doJSON(ctx context.Context, req request, out any) error {
	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return model.NewDecodeError(req.op, fmt.Errorf("parse response: %w", err))
	}
	return nil
}

// call is the common JSON round trip.
func (c *Client) call(ctx context.Context, op, method, path string, auth bool, in, out any) error {
	req, err := jsonRequest(op, method, path, auth, in)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, out)
}

// check validates v with its `validate` struct tags and converts failures
// into a VALIDATION_FAILURE.
func (c *Client) check(op string, v any) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.NewValidationError(op, err.Error())
	}
	details := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, model.FieldError{
			Path:    fe.Namespace(),
			Message: fieldMessage(fe),
		})
	}
	return model.NewValidationError(op, details[0].Message, details...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
