package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teachbridge/authkit/internal/client/models"
	"github.com/teachbridge/authkit/internal/common"
	"github.com/teachbridge/authkit/internal/logging"
)

const requestTimeout = 30 * time.Second

// HTTPClient talks JSON over HTTP to the auth backend. Pass a transport
// built with NewAuthTransport to get token decoration and the 401
// refresh-retry behavior; pass nil for a bare client (used for the
// unauthenticated endpoints: login, refresh, validate).
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     logging.Logger
}

func NewHTTPClient(baseURL string, transport http.RoundTripper, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Transport: transport, Timeout: requestTimeout},
		log:     log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", struct{}{}, nil)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.post(ctx, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type validateRequest struct {
	Token string `json:"token"`
}

func (c *HTTPClient) Validate(ctx context.Context, token string) (*ValidateResponse, error) {
	var resp ValidateResponse
	if err := c.post(ctx, "/auth/validate", validateRequest{Token: token}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type googleLoginRequest struct {
	IDToken     string `json:"idToken"`
	AccessToken string `json:"accessToken"`
}

func (c *HTTPClient) GoogleLogin(ctx context.Context, idToken, accessToken string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/google", googleLoginRequest{IDToken: idToken, AccessToken: accessToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/forgot-password", forgotPasswordRequest{Email: email}, nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, password string) error {
	return c.post(ctx, "/auth/reset-password", resetPasswordRequest{Token: token, Password: password}, nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (c *HTTPClient) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.post(ctx, "/auth/change-password", changePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		// No response received at all.
		return common.WrapAuthError(common.KindNetworkError, "Network error", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.WrapAuthError(common.KindNetworkError, "Network error", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string `json:"message"`
}

// mapStatus translates an HTTP error status into the auth error taxonomy.
// The server's message, when present, becomes the display message.
func mapStatus(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	kind, fallback := classify(status)
	msg := eb.Message
	if msg == "" {
		msg = fallback
	}
	return common.NewAuthError(kind, msg)
}

func classify(status int) (common.ErrorKind, string) {
	switch status {
	case http.StatusUnauthorized:
		return common.KindInvalidCredentials, "Invalid credentials"
	case http.StatusNotFound:
		return common.KindUserNotFound, "User not found"
	case http.StatusConflict:
		return common.KindEmailAlreadyExists, "Email already exists"
	case http.StatusUnprocessableEntity:
		return common.KindWeakPassword, "Password does not meet requirements"
	default:
		return common.KindNetworkError, "Network error"
	}
}
