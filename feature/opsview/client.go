package opsview

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

	"go.uber.org/zap"
)

const (
	headerUsername = "X-Opsview-Username"
	headerToken    = "X-Opsview-Token"

	// hashtagDescription marks keywords as sync-owned; purge relies on
	// this prefix to tell them apart from operator-created ones.
	hashtagDescription = "Created by Opsview CMDB Sync"

	defaultCheckCommand = "ping"
)

// Client talks to the Opsview REST API. Login must have completed
// before the client is shared between goroutines; afterwards the token
// is only read.
type Client struct {
	baseURL    *url.URL
	cfg        Config
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the configuration and builds a REST client. No
// connection is made until Login.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("opsview url is required")
	}

	rawURL := cfg.URL
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid opsview url: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid opsview url %q: no host", cfg.URL)
	}

	return &Client{
		baseURL: parsed,
		cfg:     cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: logger,
	}, nil
}

// Login exchanges the credentials for a session token used by every
// later request.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/rest/login", body, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return errors.New("opsview login returned no token")
	}

	c.token = out.Token
	c.logger.Debug("opsview session established", zap.String("url", c.baseURL.String()))
	return nil
}

// Logout invalidates the session token. Safe to call without a login.
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/rest/logout", struct{}{}, nil)
	c.token = ""
	return err
}

// ListHosts returns every configured host.
func (c *Client) ListHosts(ctx context.Context) ([]Host, error) {
	return listAll[Host](ctx, c, "/rest/config/host")
}

// ListClusters returns the collector clusters hosts can be monitored by.
func (c *Client) ListClusters(ctx context.Context) ([]Cluster, error) {
	return listAll[Cluster](ctx, c, "/rest/config/monitoringcluster")
}

// ListHashtags returns every keyword.
func (c *Client) ListHashtags(ctx context.Context) ([]Hashtag, error) {
	return listAll[Hashtag](ctx, c, "/rest/config/keyword")
}

// CreateHost creates a host. Missing host groups along the matpath are
// created by the API.
func (c *Client) CreateHost(ctx context.Context, h Host) error {
	return c.do(ctx, http.MethodPost, "/rest/config/host", h, nil)
}

// UpdateHost replaces the host with the given internal id.
func (c *Client) UpdateHost(ctx context.Context, id string, h Host) error {
	return c.do(ctx, http.MethodPut, "/rest/config/host/"+id, h, nil)
}

// DeleteHosts removes hosts in a single call. Hosts are the one config
// type the API deletes in bulk, by id list.
func (c *Client) DeleteHosts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := url.Values{}
	for _, id := range ids {
		q.Add("id", id)
	}
	return c.do(ctx, http.MethodDelete, "/rest/config/host?"+q.Encode(), nil, nil)
}

// DeleteHashtag removes one keyword by id.
func (c *Client) DeleteHashtag(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/config/keyword/"+id, nil, nil)
}

// ReloadStatus reports whether configuration changes are waiting to be
// applied.
func (c *Client) ReloadStatus(ctx context.Context) (bool, error) {
	var out struct {
		ConfigurationStatus string `json:"configuration_status"`
	}
	if err := c.do(ctx, http.MethodGet, "/rest/reload", nil, &out); err != nil {
		return false, err
	}

	switch out.ConfigurationStatus {
	case "uptodate":
		return false, nil
	case "pending":
		return true, nil
	}
	return false, fmt.Errorf("unexpected configuration status %q", out.ConfigurationStatus)
}

// Reload applies pending configuration changes.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/rest/reload", struct{}{}, nil)
}

type pageSummary struct {
	Page       string `json:"page"`
	TotalPages string `json:"totalpages"`
}

type page[T any] struct {
	List    []T         `json:"list"`
	Summary pageSummary `json:"summary"`
}

// listAll walks ?page=N until the summary reports the last page. The
// API returns page numbers as strings, so they compare as strings.
func listAll[T any](ctx context.Context, c *Client, base string) ([]T, error) {
	var all []T
	for n := 1; ; n++ {
		var p page[T]
		if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s?page=%d", base, n), nil, &p); err != nil {
			return nil, err
		}
		all = append(all, p.List...)
		if p.Summary.Page == p.Summary.TotalPages {
			return all, nil
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid opsview path %q: %w", path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(headerUsername, c.cfg.Username)
		req.Header.Set(headerToken, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response, so no status to classify; counts as transient.
		return &APIError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("status %d: %s", resp.StatusCode, bodySnippet(resp.Body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// bodySnippet reads a short prefix of an error response for logging.
func bodySnippet(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
