package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"dogwalker-be/pkg/logger"
)

// SupabaseClient talks to the Supabase auth (GoTrue) REST API. It also
// fans out auth events from its own state-changing calls, mirroring the
// SDK's onAuthStateChange channel.
type SupabaseClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logger.Logger

	mu          sync.Mutex
	nextSubID   int
	subscribers map[int]func(AuthEvent)
}

// NewSupabaseClient creates a new Supabase auth client.
func NewSupabaseClient(supabaseURL, anonKey string, logger *logger.Logger) *SupabaseClient {
	return &SupabaseClient{
		baseURL: supabaseURL + "/auth/v1",
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:      logger,
		subscribers: make(map[int]func(AuthEvent)),
	}
}

// supabaseError is GoTrue's error envelope. Different endpoints use
// different field names, so all three are probed.
type supabaseError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e supabaseError) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Error != "":
		return e.Error
	default:
		return "unknown provider error"
	}
}

// SignInWithPassword exchanges credentials for a session via the
// password grant.
func (c *SupabaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, err := c.post(ctx, "/token?grant_type=password", c.anonKey, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to parse sign-in response: %w", err)
	}

	c.emit(AuthEvent{Type: EventSignedIn, Session: &session})
	return &session, nil
}

// SignUp registers a new account. Depending on project settings the
// response is either a full session (auto-confirm) or a bare identity
// awaiting email confirmation.
func (c *SupabaseClient) SignUp(ctx context.Context, email, password string, meta Metadata) (*SignUpResult, error) {
	body, err := c.post(ctx, "/signup", c.anonKey, map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     meta,
	})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err == nil && session.AccessToken != "" {
		c.emit(AuthEvent{Type: EventSignedIn, Session: &session})
		return &SignUpResult{User: session.User, Session: &session}, nil
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse signup response: %w", err)
	}
	return &SignUpResult{User: &identity}, nil
}

// SignOut revokes the session behind the access token.
func (c *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	token := accessToken
	if token == "" {
		token = c.anonKey
	}
	if _, err := c.post(ctx, "/logout", token, nil); err != nil {
		return err
	}
	c.emit(AuthEvent{Type: EventSignedOut})
	return nil
}

// RefreshSession exchanges a refresh token for a new session.
func (c *SupabaseClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body, err := c.post(ctx, "/token?grant_type=refresh_token", c.anonKey, map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to parse refresh response: %w", err)
	}

	c.emit(AuthEvent{Type: EventTokenRefreshed, Session: &session})
	return &session, nil
}

// GetUser fetches the identity behind an access token.
func (c *SupabaseClient) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	body, err := c.do(ctx, http.MethodGet, "/user", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	return &identity, nil
}

// UpdateUser merges metadata into the identity behind the token.
func (c *SupabaseClient) UpdateUser(ctx context.Context, accessToken string, meta Metadata) (*Identity, error) {
	body, err := c.do(ctx, http.MethodPut, "/user", accessToken, map[string]interface{}{
		"data": meta,
	})
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse user update response: %w", err)
	}
	return &identity, nil
}

// OnAuthStateChange registers a subscriber. The returned function
// removes it again.
func (c *SupabaseClient) OnAuthStateChange(fn func(AuthEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *SupabaseClient) emit(event AuthEvent) {
	c.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (c *SupabaseClient) post(ctx context.Context, path, bearer string, payload interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, bearer, payload)
}

func (c *SupabaseClient) do(ctx context.Context, method, path, bearer string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody supabaseError
		if err := json.Unmarshal(body, &errBody); err != nil {
			c.logger.WithFields(map[string]interface{}{
				"status_code": resp.StatusCode,
				"path":        path,
			}).Error("Unparseable auth error response")
			return nil, &Error{Message: "unknown provider error", StatusCode: resp.StatusCode}
		}
		// Raw message stays inside the Error type; callers sanitize it
		// before anything user-facing sees it.
		return nil, &Error{Message: errBody.message(), StatusCode: resp.StatusCode}
	}

	return body, nil
}
