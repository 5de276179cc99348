package servicenow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	tablePath = "/api/now/table/cmdb_ci"

	// attributeQuery limits the fetch to CIs that carry sync directives
	// at all. Everything else is out of scope and never leaves the CMDB.
	attributeQuery = "attributesLIKEOpsviewCollectorCluster"

	recordFields = "sys_id,name,attributes,ip_address,fqdn,asset_tag,sys_class_name"
)

// Record is one cmdb_ci row as returned by the Table API.
type Record struct {
	SysID        string `json:"sys_id"`
	Name         string `json:"name"`
	Attributes   string `json:"attributes"`
	IPAddress    string `json:"ip_address"`
	FQDN         string `json:"fqdn"`
	AssetTag     string `json:"asset_tag"`
	SysClassName string `json:"sys_class_name"`
}

// APIError is a Table API response outside the 2xx range.
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == http.StatusUnauthorized {
		return "servicenow authentication failed"
	}
	if e.StatusCode == http.StatusForbidden {
		return "servicenow authorization failed"
	}
	if e.StatusCode >= 400 {
		return fmt.Sprintf("servicenow API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("servicenow API error: %v", e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client reads configuration items from the ServiceNow Table API.
type Client struct {
	baseURL    *url.URL
	instance   string
	cfg        Config
	httpClient *http.Client
}

// NewClient validates the configuration and builds a Table API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("servicenow url is required")
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid servicenow url: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid servicenow url %q: no host", cfg.URL)
	}

	return &Client{
		baseURL:  parsed,
		instance: parsed.Hostname(),
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}, nil
}

// Instance returns the instance name derived from the configured URL,
// e.g. dev85142.service-now.com.
func (c *Client) Instance() string {
	return c.instance
}

// FetchRecords returns every CI carrying sync directives, walking
// sysparm_offset pages until a short page signals the end.
func (c *Client) FetchRecords(ctx context.Context) ([]Record, error) {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var records []Record
	for offset := 0; ; offset += pageSize {
		page, err := c.fetchPage(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < pageSize {
			return records, nil
		}
	}
}

type tableResponse struct {
	Result []Record `json:"result"`
}

func (c *Client) fetchPage(ctx context.Context, offset, limit int) ([]Record, error) {
	target := *c.baseURL
	target.Path = tablePath

	q := url.Values{}
	q.Set("sysparm_query", attributeQuery)
	q.Set("sysparm_fields", recordFields)
	q.Set("sysparm_offset", strconv.Itoa(offset))
	q.Set("sysparm_limit", strconv.Itoa(limit))
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: err}
	}
	return payload.Result, nil
}
