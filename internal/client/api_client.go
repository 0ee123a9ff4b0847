package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dom/reader/internal/domain"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// NewAPIClient creates a client rooted at baseURL + "/api".
func NewAPIClient(baseURL string, session *Session) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: session,
	}
}

func (c *APIClient) Session() *Session {
	return c.session
}

// Request and response types matching backend

type Credentials struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TermsAgreedTo bool   `json:"termsAgreedTo,omitempty"`
}

type AuthResponse struct {
	IsAuthSuccessful bool   `json:"isAuthSuccessful"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
	Token            string `json:"token,omitempty"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Code            string `json:"code"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// APIResponse is the raw outcome of a resource call.
type APIResponse struct {
	Success    bool
	StatusCode int
	Message    string
	Data       []byte
}

// Decode unmarshals the response body into v.
func (r *APIResponse) Decode(v interface{}) error {
	if !r.Success {
		return fmt.Errorf("request failed (status %d): %s", r.StatusCode, strings.TrimSpace(r.Message))
	}
	return json.Unmarshal(r.Data, v)
}

// Register creates an account and, on success, signs in with the returned token.
func (c *APIClient) Register(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

// Login stores the issued token and notifies session subscribers.
func (c *APIClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", Credentials{Email: email, Password: password})
}

func (c *APIClient) Logout() error {
	return c.session.Logout()
}

func (c *APIClient) ForgotPassword(ctx context.Context, email string) (bool, error) {
	return c.postQuery(ctx, "/auth/ForgotPassword", url.Values{"email": {email}})
}

func (c *APIClient) ResendEmailConfirmation(ctx context.Context, email string) (bool, error) {
	return c.postQuery(ctx, "/auth/ResendEmailConfirmation", url.Values{"email": {email}})
}

func (c *APIClient) ConfirmEmail(ctx context.Context, userID, code string) (bool, error) {
	return c.postQuery(ctx, "/auth/ConfirmEmail", url.Values{"userId": {userID}, "code": {code}})
}

func (c *APIClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (bool, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/ResetPassword", req, false)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (c *APIClient) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*APIResponse, error) {
	return c.do(ctx, http.MethodPut, "/users/ChangePassword", req, true)
}

func (c *APIClient) SearchBooks(ctx context.Context, term string) (*domain.VolumeSearchResult, error) {
	resp, err := c.Get(ctx, "books/search?"+url.Values{"q": {term}}.Encode())
	if err != nil {
		return nil, err
	}

	var result domain.VolumeSearchResult
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches api/{resource}.
func (c *APIClient) Get(ctx context.Context, resource string) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, "/"+strings.TrimPrefix(resource, "/"), nil, true)
}

// Create posts obj to api/{controller}/Create.
func (c *APIClient) Create(ctx context.Context, controller string, obj interface{}) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, "/"+controller+"/Create", obj, true)
}

// Update puts obj to api/{controller}/Update.
func (c *APIClient) Update(ctx context.Context, controller string, obj interface{}) (*APIResponse, error) {
	return c.do(ctx, http.MethodPut, "/"+controller+"/Update", obj, true)
}

// Delete removes api/{resource}/{id}.
func (c *APIClient) Delete(ctx context.Context, resource string, id int64) (bool, error) {
	resp, err := c.do(ctx, http.MethodDelete, "/"+resource+"/"+strconv.FormatInt(id, 10), nil, true)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (c *APIClient) authenticate(ctx context.Context, path string, creds Credentials) (*AuthResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, path, creds, false)
	if err != nil {
		return nil, err
	}

	var result AuthResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		result = AuthResponse{ErrorMessage: strings.TrimSpace(resp.Message)}
	}

	if !resp.Success {
		result.IsAuthSuccessful = false
		return &result, nil
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%s succeeded without a token", path)
	}

	if err := c.session.SetToken(result.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return &AuthResponse{IsAuthSuccessful: true}, nil
}

func (c *APIClient) postQuery(ctx context.Context, path string, query url.Values) (bool, error) {
	resp, err := c.do(ctx, http.MethodPost, path+"?"+query.Encode(), struct{}{}, false)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

// HTTP helpers

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}, authorized bool) (*APIResponse, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if authorized {
		token, err := c.session.Token()
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Message:    string(content),
		Data:       content,
	}, nil
}
