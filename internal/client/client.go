// ABOUTME: HTTP client for the recipe backend API
// ABOUTME: Attaches the bearer token from the session and normalizes every failure

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/markalston/recipe-scaler/internal/session"
)

// Operation names and their default failure messages
const (
	opSignIn       = "sign in"
	opAddRecipe    = "add recipe"
	opDeleteRecipe = "delete recipe"
	opGetRecipe    = "get recipe"
	opListRecipes  = "list recipes"
	opCreateUser   = "create user"
)

var defaultMessages = map[string]string{
	opSignIn:       "Sign in failed",
	opAddRecipe:    "Failed to add recipe",
	opDeleteRecipe: "Failed to delete recipe",
	opGetRecipe:    "Failed to get recipe",
	opListRecipes:  "Failed to list recipes",
	opCreateUser:   "Failed to create user",
}

// InvalidCredentialsMessage is shown for any rejected sign-in
const InvalidCredentialsMessage = "Invalid ID or Password"

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 1 << 20

// SessionSource supplies the current session on every request
type SessionSource interface {
	Get() (session.Session, error)
}

// Client is the API client for the recipe backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    SessionSource
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithSession sets where the bearer token is read from
func WithSession(src SessionSource) Option {
	return func(c *Client) { c.session = src }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SignIn calls POST /api/auth/signin. It never sends a bearer token and does
// not persist the result; storing the session is the caller's job.
func (c *Client) SignIn(ctx context.Context, cred Credential) (*SignInResult, error) {
	body, err := c.do(ctx, opSignIn, http.MethodPost, "/api/auth/signin", nil, cred, false)
	if err != nil {
		markCredentialRejection(err)
		return nil, err
	}

	var result SignInResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, c.invalidResponse(opSignIn, err)
	}
	if result.Token == "" {
		return nil, c.invalidResponse(opSignIn, fmt.Errorf("response has no token"))
	}
	return &result, nil
}

// AddRecipe calls POST /api/recipes/add and returns a confirmation message
func (c *Client) AddRecipe(ctx context.Context, recipe Recipe) (string, error) {
	if err := recipe.Validate(); err != nil {
		return "", err
	}

	body, err := c.do(ctx, opAddRecipe, http.MethodPost, "/api/recipes/add", nil, recipe, true)
	if err != nil {
		return "", err
	}
	return confirmation(body, fmt.Sprintf("Recipe %q added", recipe.Name)), nil
}

// DeleteRecipe calls DELETE /api/recipes/delete. Whether the name exists is
// for the server to decide.
func (c *Client) DeleteRecipe(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", validationError(opDeleteRecipe, "Recipe name is required")
	}

	query := url.Values{"recipeName": {name}}
	body, err := c.do(ctx, opDeleteRecipe, http.MethodDelete, "/api/recipes/delete", query, nil, true)
	if err != nil {
		return "", err
	}
	return confirmation(body, fmt.Sprintf("Recipe %q deleted", name)), nil
}

// GetRecipe calls GET /api/recipes/get for one recipe scaled by the server
// for childrenCount children. The count is sent as given.
func (c *Client) GetRecipe(ctx context.Context, name string, childrenCount int) (*Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError(opGetRecipe, "Recipe name is required")
	}
	if err := ValidateChildrenCount(childrenCount); err != nil {
		return nil, err
	}

	query := url.Values{
		"name":     {name},
		"children": {strconv.Itoa(childrenCount)},
	}
	body, err := c.do(ctx, opGetRecipe, http.MethodGet, "/api/recipes/get", query, nil, true)
	if err != nil {
		return nil, err
	}

	var recipe Recipe
	if err := json.Unmarshal(body, &recipe); err != nil {
		return nil, c.invalidResponse(opGetRecipe, err)
	}
	return &recipe, nil
}

// ListRecipes calls GET /api/recipes/get without a name, which returns every
// stored recipe unscaled
func (c *Client) ListRecipes(ctx context.Context) ([]Recipe, error) {
	body, err := c.do(ctx, opListRecipes, http.MethodGet, "/api/recipes/get", nil, nil, true)
	if err != nil {
		return nil, err
	}

	var recipes []Recipe
	if err := json.Unmarshal(body, &recipes); err != nil {
		return nil, c.invalidResponse(opListRecipes, err)
	}
	return recipes, nil
}

// CreateUser calls POST /api/admin/create. Admin rights are enforced by the
// server, not here.
func (c *Client) CreateUser(ctx context.Context, req NewUserRequest) (string, error) {
	if strings.TrimSpace(req.ID) == "" || req.Password == "" {
		return "", validationError(opCreateUser, "User ID and password are required")
	}

	body, err := c.do(ctx, opCreateUser, http.MethodPost, "/api/admin/create", nil, req, true)
	if err != nil {
		return "", err
	}
	return confirmation(body, "User created successfully"), nil
}

// ValidateChildrenCount rejects counts that are not positive
func ValidateChildrenCount(n int) error {
	if n <= 0 {
		return validationError(opGetRecipe, "Number of children must be a positive whole number")
	}
	return nil
}

// ParseChildrenCount converts user input into a children count
func ParseChildrenCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, validationError(opGetRecipe, "Number of children must be a positive whole number")
	}
	if err := ValidateChildrenCount(n); err != nil {
		return 0, err
	}
	return n, nil
}

// do performs one request and returns the response body on 2xx. Any other
// outcome is returned as *Error.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any, authed bool) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, c.failure(op, 0, "", fmt.Errorf("failed to marshal input: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, c.failure(op, 0, "", fmt.Errorf("failed to create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("API request", "op", op, "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.failure(op, 0, "", c.handleRequestError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.failure(op, resp.StatusCode, "", fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.failure(op, resp.StatusCode, serverMessage(body),
			fmt.Errorf("backend returned status %d", resp.StatusCode))
	}

	c.logger.Debug("API response", "op", op, "status", resp.StatusCode, "request_id", requestID)
	return body, nil
}

// token reads the bearer token from the session source, if any
func (c *Client) token() string {
	if c.session == nil {
		return ""
	}
	s, err := c.session.Get()
	if err != nil {
		c.logger.Warn("Reading session failed, sending request without token", "error", err)
		return ""
	}
	return s.Normalize().Token
}

// failure builds the normalized error for op
func (c *Client) failure(op string, status int, serverMsg string, cause error) *Error {
	msg := serverMsg
	if msg == "" {
		msg = defaultMessages[op]
	}
	e := &Error{Kind: KindRemote, Op: op, Status: status, Message: msg, Err: cause}
	c.logger.Warn("API request failed", "op", op, "status", status, "error", e.Detail())
	return e
}

func (c *Client) invalidResponse(op string, err error) *Error {
	return c.failure(op, 0, "", fmt.Errorf("invalid response from backend: %w", err))
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled: %w", err)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// serverMessage pulls a human-readable message out of an error body
func serverMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// confirmation returns the server's message field or fallback
func confirmation(body []byte, fallback string) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		if v := gjson.GetBytes(body, "message"); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return fallback
}

func isCredentialRejection(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden
}

// markCredentialRejection turns a rejected sign-in anywhere in err's chain
// into the generic authentication failure
func markCredentialRejection(err error) {
	var e *Error
	if errors.As(err, &e) && isCredentialRejection(e.Status) {
		e.Kind = KindAuthentication
		e.Message = InvalidCredentialsMessage
	}
}
