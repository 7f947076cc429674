package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// APIError : ответ сервера с кодом не 2xx
type APIError struct {
	Status       int
	Message      string
	ShouldLogout bool

	rejected bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authclient: %d %s", e.Status, e.Message)
}

// Is : 401 с признаком недействительного токена совпадает с ErrSessionInvalid
func (e *APIError) Is(target error) bool {
	return target == ErrSessionInvalid && e.rejected
}

type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	guard   *Guard
}

// NewClient : base == nil означает http.DefaultTransport
func NewClient(baseURL string, guard *Guard, base http.RoundTripper) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &Transport{Base: base, Guard: guard},
			Timeout:   requestTimeout,
		},
		guard: guard,
	}
}

func (c *Client) Login(ctx context.Context, emailOrUsername, password string) (*User, error) {
	req := map[string]string{"emailOrUsername": emailOrUsername, "password": password}

	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         User   `json:"user"`
	}
	// неверный пароль не должен завершать уже сохранённую сессию
	if err := c.do(withoutSession(ctx), http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}

	c.guard.session.Store(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return &resp.User, nil
}

// Refresh : ротация пары токенов. Отклонённый refresh токен завершает сессию
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.guard.session.Tokens().RefreshToken
	if refresh == "" {
		c.guard.logout("no refresh token")
		return ErrSessionInvalid
	}

	var tokens Tokens
	if err := c.do(ctx, http.MethodPost, "/api/auth/token/refresh", map[string]string{"refreshToken": refresh}, &tokens); err != nil {
		return err
	}

	c.guard.session.Store(tokens)
	return nil
}

// Logout : локальная сессия очищается даже при ошибке сервера
func (c *Client) Logout(ctx context.Context) error {
	tokens := c.guard.session.Tokens()
	if tokens.AccessToken == "" {
		return nil
	}
	defer c.guard.session.Clear()

	err := c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": tokens.RefreshToken}, nil)
	if errors.Is(err, ErrSessionInvalid) {
		return nil
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	if err := c.guard.PreCheck(); err != nil {
		return nil, err
	}

	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("authclient: json.Marshal failed: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("authclient: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("authclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("authclient: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data, !isAnonymous(ctx))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("authclient: decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte, withSession bool) *APIError {
	apiErr := &APIError{Status: status}

	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
	} else {
		apiErr.Message = e.Error
		apiErr.ShouldLogout = e.ShouldLogout
	}

	apiErr.rejected = withSession && status == http.StatusUnauthorized && rejectsSession(body)
	return apiErr
}
