package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
	defaultTimeout = 30 * time.Second
)

// Client is a minimal REST client for the external document service.
// It is safe for concurrent use; base URL and credential are fixed at
// construction and never mutated.
type Client struct {
	http *resty.Client
}

// ClientOptions configures a Client
type ClientOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new Client. Every request carries a bounded
// timeout so a hung external call cannot hang its request forever.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(opts.APIKey).
		SetHeader("Notion-Version", apiVersion).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{http: c}
}

// CreatePage creates a page with its properties and initial children
// in one call
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	var page Page
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&page).
		Post("/v1/pages")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage patches page properties and/or the archived flag
func (c *Client) UpdatePage(ctx context.Context, pageID string, req UpdatePageRequest) (*Page, error) {
	var page Page
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&page).
		Patch("/v1/pages/" + pageID)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &page, nil
}

// RetrievePage fetches a single page by id
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&page).
		Get("/v1/pages/" + pageID)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &page, nil
}

// QueryDatabase runs a single bounded query against a database
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest) ([]Page, error) {
	var result queryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&result).
		Post("/v1/databases/" + databaseID + "/query")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// ListBlockChildren fetches the child blocks of a page or block
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	var result blockListResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/v1/blocks/" + blockID + "/children")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// AppendBlockChildren appends blocks to a page or block
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []Block) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&appendChildrenRequest{Children: children}).
		Patch("/v1/blocks/" + blockID + "/children")
	return checkResponse(resp, err)
}

// DeleteBlock archives a single block
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/v1/blocks/" + blockID)
	return checkResponse(resp, err)
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("notion api: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
