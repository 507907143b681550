// Package apiclient provides an HTTP client for the CRM REST API.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/realty-crm/internal/auth"
	"github.com/evcraddock/realty-crm/internal/client"
	"github.com/evcraddock/realty-crm/internal/property"
	"github.com/evcraddock/realty-crm/internal/visit"
)

// Client is an HTTP client for the CRM API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for public endpoints.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Token is the login response.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Ping checks that the server is reachable.
func (c *Client) Ping() error {
	return c.get("/ping", nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(username, password string) (*Token, error) {
	body := map[string]string{"username": username, "password": password}
	var tok Token
	if err := c.send(http.MethodPost, "/users/login", body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me returns the authenticated user.
func (c *Client) Me() (*auth.User, error) {
	var u auth.User
	if err := c.get("/users/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListProperties returns all properties.
func (c *Client) ListProperties() ([]*property.Property, error) {
	var props []*property.Property
	if err := c.get("/properties/", &props); err != nil {
		return nil, err
	}
	return props, nil
}

// ListClients returns all clients.
func (c *Client) ListClients() ([]*client.Client, error) {
	var clients []*client.Client
	if err := c.get("/clients/", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// VisitListOptions controls filtering for ListVisits. Zero values are omitted.
type VisitListOptions struct {
	Status     string
	ClientID   int64
	PropertyID int64
	DateFrom   string
	DateTo     string
	Limit      int
	Offset     int
}

func (o VisitListOptions) query() string {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.ClientID != 0 {
		q.Set("client_id", strconv.FormatInt(o.ClientID, 10))
	}
	if o.PropertyID != 0 {
		q.Set("property_id", strconv.FormatInt(o.PropertyID, 10))
	}
	if o.DateFrom != "" {
		q.Set("date_from", o.DateFrom)
	}
	if o.DateTo != "" {
		q.Set("date_to", o.DateTo)
	}
	if o.Limit != 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset != 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListVisits returns visits matching opts, latest first.
func (c *Client) ListVisits(opts VisitListOptions) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	if err := c.get("/visits/"+opts.query(), &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// TodayVisits returns today's active visits.
func (c *Client) TodayVisits() ([]*visit.Visit, error) {
	var visits []*visit.Visit
	if err := c.get("/visits/today", &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// Calendar returns the active visits of a month.
func (c *Client) Calendar(month, year int) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	path := fmt.Sprintf("/visits/calendar?month=%d&year=%d", month, year)
	if err := c.get(path, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// VisitSummary returns aggregate visit statistics.
func (c *Client) VisitSummary() (*visit.Summary, error) {
	var sum visit.Summary
	if err := c.get("/visits/statistics/summary", &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// CreateVisit schedules a visit.
func (c *Client) CreateVisit(in visit.Input) (*visit.Visit, error) {
	var v visit.Visit
	if err := c.send(http.MethodPost, "/visits/", in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVisitStatus transitions a visit to status.
func (c *Client) UpdateVisitStatus(id int64, status string) (*visit.Visit, error) {
	var v visit.Visit
	path := fmt.Sprintf("/visits/%d/status?status=%s", id, url.QueryEscape(status))
	if err := c.send(http.MethodPatch, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVisit removes a visit.
func (c *Client) DeleteVisit(id int64) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/visits/%d", id), nil, nil)
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	return c.send(http.MethodGet, path, nil, result)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "server error: " + http.StatusText(resp.StatusCode)}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
