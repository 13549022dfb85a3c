// Package vault is a client for the Veeva Vault REST API: session
// authentication, VQL queries, document content download, and custom document
// field updates.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/velora-health/docenrich/internal/common"
)

const apiVersion = "v20.1"

// ClientOptions configures the Vault API client.
type ClientOptions struct {
	// DomainName is the Vault subdomain; the base URL is derived from it.
	DomainName string
	// BaseURL overrides the derived URL, mainly for tests.
	BaseURL string
	// RetryMax is the maximum number of retries (default: 3).
	RetryMax int
	// Timeout is the HTTP client timeout (default: 30 seconds).
	Timeout time.Duration
}

// Client is the Vault API client. Authenticate returns a Session carrying the
// session id; all other calls hang off the session.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

// NewClient creates a Vault API client with default settings.
func NewClient(domainName string) *Client {
	return NewClientWithOptions(ClientOptions{DomainName: domainName})
}

// NewClientWithOptions creates a Vault API client with custom options.
func NewClientWithOptions(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = fmt.Sprintf("https://%s.veevavault.com/api/%s", opts.DomainName, apiVersion)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.Logger = nil

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: retryClient,
	}
}

// Session is an authenticated Vault session.
type Session struct {
	client *Client
	id     string
}

// Authenticate exchanges credentials for a session. A non-success response
// status wraps common.ErrAuthFailed so callers can abort the invocation.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var result authResponse
	if err := c.doForm(ctx, http.MethodPost, c.baseURL+"/auth", "", form, &result); err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, fmt.Errorf("%w: %s", common.ErrAuthFailed, result.ErrorMessage())
	}
	return &Session{client: c, id: result.SessionID}, nil
}

// Query posts a VQL query and returns the matching document rows.
func (s *Session) Query(ctx context.Context, vql string) ([]DocumentRow, error) {
	form := url.Values{}
	form.Set("q", vql)

	var result queryResponse
	if err := s.client.doForm(ctx, http.MethodPost, s.client.baseURL+"/query", s.id, form, &result); err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, fmt.Errorf("vql query failed: %s", result.ErrorMessage())
	}
	return result.Data, nil
}

// DownloadDocument fetches one document version's content. The returned
// content type distinguishes file payloads from JSON error envelopes.
func (s *Session) DownloadDocument(ctx context.Context, id string, major, minor int) ([]byte, string, error) {
	endpoint := fmt.Sprintf("%s/objects/documents/%s/versions/%d/%d/file", s.client.baseURL, id, major, minor)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", s.id)

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download document %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read document %s: %w", id, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download document %s: unexpected status %d", id, resp.StatusCode)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// DocumentProperties returns the document field metadata entries that carry a
// label.
func (s *Session) DocumentProperties(ctx context.Context) ([]Property, error) {
	var result propertiesResponse
	err := s.client.doJSON(ctx, http.MethodGet, s.client.baseURL+"/metadata/objects/documents/properties", s.id, &result)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, fmt.Errorf("fetch document properties: %s", result.ErrorMessage())
	}
	labeled := make([]Property, 0, len(result.Properties))
	for _, p := range result.Properties {
		if p.Label != "" {
			labeled = append(labeled, p)
		}
	}
	return labeled, nil
}

// Document returns one document's field map.
func (s *Session) Document(ctx context.Context, id string) (map[string]any, error) {
	var result documentResponse
	err := s.client.doJSON(ctx, http.MethodGet, s.client.baseURL+"/objects/documents/"+id, s.id, &result)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, fmt.Errorf("fetch document %s: %s", id, result.ErrorMessage())
	}
	return result.Document, nil
}

// UpdateDocument sets one field on a document.
func (s *Session) UpdateDocument(ctx context.Context, id, fieldName, fieldValue string) error {
	form := url.Values{}
	form.Set(fieldName, fieldValue)

	var result apiResponse
	err := s.client.doForm(ctx, http.MethodPut, s.client.baseURL+"/objects/documents/"+id, s.id, form, &result)
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("update document %s: %s", id, result.ErrorMessage())
	}
	return nil
}

func (c *Client) doForm(ctx context.Context, method, endpoint, session string, form url.Values, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != "" {
		req.Header.Set("Authorization", session)
	}
	return c.do(req, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, session string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if session != "" {
		req.Header.Set("Authorization", session)
	}
	return c.do(req, out)
}

func (c *Client) do(req *retryablehttp.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vault request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read vault response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode vault response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
