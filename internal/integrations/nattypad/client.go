// Package nattypad is a client for the NattyPad content API (categories and
// quotes) used by the admin integration endpoints.
package nattypad

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/google/uuid"
)

// ErrUpstream wraps every failure talking to NattyPad that is not a 404.
var ErrUpstream = errors.New("nattypad request failed")

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	tokens       *TokenCache
}

func NewClient(cfg Config, tokens *TokenCache) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		tokens:       tokens,
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.clientID != ""
}

type Lookup struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsNav       bool      `json:"is_nav"`
	IsFeatured  bool      `json:"is_featured"`
}

type Quote struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	Background string    `json:"background"`
	Status     string    `json:"status"`
	Tags       []Lookup  `json:"tags"`
	Author     *Lookup   `json:"author"`
}

type Query struct {
	Search  string
	Page    int
	PerPage int
}

// Page mirrors NattyPad's paged envelope.
type Page[T any] struct {
	Data        []T    `json:"data"`
	CurrentPage int    `json:"current_page"`
	PageSize    int    `json:"page_size"`
	Total       int64  `json:"total"`
	Message     string `json:"message"`
}

type single[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

func (c *Client) Categories(ctx context.Context, q Query) (*Page[Category], error) {
	var out Page[Category]
	if err := c.get(ctx, "/apps/categories", q.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Category(ctx context.Context, id uuid.UUID) (*Category, error) {
	var out single[Category]
	if err := c.get(ctx, "/apps/categories/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) Quotes(ctx context.Context, q Query) (*Page[Quote], error) {
	var out Page[Quote]
	if err := c.get(ctx, "/apps/quotes", q.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Quote(ctx context.Context, id uuid.UUID) (*Quote, error) {
	var out single[Quote]
	if err := c.get(ctx, "/apps/quotes/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (q Query) values() url.Values {
	v := url.Values{}
	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// get issues an authenticated GET. A 401 drops the cached token and retries
// once with a fresh one.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	for attempt := 0; ; attempt++ {
		token, err := c.tokens.GetOrRefresh(ctx, c.login)
		if err != nil {
			return err
		}

		status, err := c.do(ctx, path, query, token, out)
		if err != nil {
			return err
		}
		switch {
		case status == http.StatusUnauthorized && attempt == 0:
			c.tokens.Invalidate()
			continue
		case status == http.StatusNotFound:
			return apperr.NotFound("NattyPad resource")
		case status != http.StatusOK:
			return fmt.Errorf("%w: GET %s returned status %d", ErrUpstream, path, status)
		}
		return nil
	}
}

func (c *Client) do(ctx context.Context, path string, query url.Values, token string, out interface{}) (int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/apps/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: login returned status %d", ErrUpstream, resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode login: %v", ErrUpstream, err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("%w: login returned no token", ErrUpstream)
	}
	return result.AccessToken, nil
}
