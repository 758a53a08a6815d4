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

	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/dmitrijs2005/medreminder/internal/logging"
	"github.com/google/uuid"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// NewHTTPClient returns a client for the server at baseURL
// (e.g. "http://127.0.0.1:8080"). A nil hc selects a fresh http.Client
// with transport defaults.
func NewHTTPClient(baseURL string, hc *http.Client, logger logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    hc,
		logger:  logger.With("module", "auth_client"),
	}, nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.UserAPIResponse, error) {
	if !req.IsValid() {
		return nil, ErrInvalidData
	}
	return post[models.UserAPIResponse](ctx, c, common.PathCreateAccount, req, createAccountCodes)
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.UserAPIResponse, error) {
	if !req.IsValid() {
		return nil, ErrInvalidData
	}
	return post[models.UserAPIResponse](ctx, c, common.PathLogin, req, loginCodes)
}

func (c *HTTPClient) SendOTP(ctx context.Context, req models.SendOTPRequest) (*models.SendOTPResponse, error) {
	if !req.IsValid() {
		return nil, ErrInvalidData
	}
	return post[models.SendOTPResponse](ctx, c, common.PathSendOTP, req, sendOTPCodes)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.ForgotPasswordResponse, error) {
	if !req.IsValid() {
		return nil, ErrInvalidData
	}
	return post[models.ForgotPasswordResponse](ctx, c, common.PathForgotPassword, req, forgotPasswordCodes)
}

// Ping reports ErrUnavailable unless GET /ping answers 200.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+common.PathPing, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode != http.StatusOK {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// post sends one JSON request and decodes either the payload or the mapped
// failure. It never retries.
func post[Resp any](ctx context.Context, c *HTTPClient, path string, body any, codes codeTable) (*Resp, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrServerError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerError, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)

	log := c.logger.With("path", path, "request_id", requestID)
	log.Debug(ctx, "sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrServerError, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrServerError, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out Resp
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%w: decode response: %w", ErrServerError, err)
		}
		log.Debug(ctx, "request succeeded", "status", resp.StatusCode)
		return &out, nil
	}

	mapped := mapErrorBody(data, codes)
	log.Info(ctx, "request rejected", "status", resp.StatusCode, "error", mapped)
	return nil, mapped
}

// mapErrorBody decodes {"code": ...} and looks the code up in codes.
// Unparsable bodies and unknown codes map to ErrServerError.
func mapErrorBody(data []byte, codes codeTable) error {
	var body models.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		return ErrServerError
	}
	return codes.lookup(body.Code)
}

// IsAuthFailure reports whether err belongs to the closed remote failure set.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrUserAlreadyExists) ||
		errors.Is(err, ErrInvalidCredentials)
}
