// Package azdevops is a thin client for the Azure DevOps git REST API,
// covering the pull-request review surface: listing and fetching pull
// requests, reading threads and iteration changes, posting and replying to
// comments, and updating thread status. Each operation is a single
// request/response round trip; the server is the source of truth and nothing
// is cached locally except the resolved repository id.
package azdevops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/revi-run/revi/pkg/remote"
)

const (
	// TokenEnv is the environment variable holding the access token.
	TokenEnv = "AZURE_DEVOPS_TOKEN"

	// DefaultAPIVersion is the REST API version requested on every call.
	DefaultAPIVersion = "7.1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second
)

type authScheme int

const (
	// authBasic sends the token as the password of a Basic credential with
	// an empty username (personal access tokens).
	authBasic authScheme = iota
	// authBearer sends the token as an OAuth2 Bearer header (Microsoft
	// Entra access tokens).
	authBearer
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API prefix built from the repository coordinates.
// The value must be the full ".../_apis/git" prefix; used for Azure DevOps
// Server installs and for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithAPIVersion overrides the api-version query parameter.
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithTimeout sets a custom HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBearerAuth sends the token as a Bearer header instead of Basic auth.
func WithBearerAuth() ClientOption {
	return func(c *Client) {
		c.auth = authBearer
	}
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = logger
	}
}

// Client performs authenticated calls against one Azure DevOps repository.
// It is safe for concurrent use; distinct calls are independent round trips
// with no ordering between them.
type Client struct {
	coords     remote.Coordinates
	token      string
	auth       authScheme
	baseURL    string
	apiVersion string
	timeout    time.Duration
	httpClient *http.Client
	log        logrus.FieldLogger

	// repository id, resolved lazily on first API need
	repoMu sync.Mutex
	repoID string
}

// NewClient creates a client for the repository identified by coords. It
// fails fast when the token is empty; no network activity happens here.
func NewClient(coords remote.Coordinates, token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	c := &Client{
		coords:     coords,
		token:      token,
		apiVersion: DefaultAPIVersion,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logrus.StandardLogger(),
	}
	c.baseURL = fmt.Sprintf("https://dev.azure.com/%s/%s/_apis/git",
		url.PathEscape(coords.Organization), url.PathEscape(coords.Project))

	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = c.timeout

	if c.auth == authBearer {
		// Route requests through an oauth2 transport so the Bearer header
		// is attached uniformly, keeping whatever base transport was
		// configured (recorders included).
		c.httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token}),
			Base:   c.httpClient.Transport,
		}
	}

	return c, nil
}

// Coordinates returns the resolved organization/project/repository triple.
func (c *Client) Coordinates() remote.Coordinates {
	return c.coords
}

// newRequest builds an authenticated request for a path below the API prefix.
// The api-version parameter is appended to every request.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", c.apiVersion)
	fullURL := c.baseURL + "/" + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json;api-version="+c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth == authBasic {
		// PATs authenticate as the password of a Basic credential with an
		// empty username.
		req.SetBasicAuth("", c.token)
	}

	return req, nil
}

// do sends the request and decodes a JSON response into result, returning the
// HTTP status code. A non-2xx response becomes an *APIError carrying the
// status line and raw body; a 204 or empty body leaves result untouched.
// There are no retries.
func (c *Client) do(req *http.Request, result interface{}) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.Redacted(),
		"status": resp.StatusCode,
	}).Debug("azure devops API call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}
