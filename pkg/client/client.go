// Package client is a Go SDK for the logbook-engine API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a Go SDK for logbook-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new logbook-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Section is one snapshotted route section on an ascent
type Section struct {
	Index      int    `json:"index"`
	Height     *int   `json:"height"`
	Grade      string `json:"grade"`
	GradeValue int    `json:"grade_value"`
}

// Ascent represents an ascent response
type Ascent struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	RouteID           string    `json:"route_id,omitempty"`
	ClimbingSessionID string    `json:"climbing_session_id,omitempty"`
	AscentStatus      string    `json:"ascent_status"`
	RopingStatus      string    `json:"roping_status"`
	HardnessStatus    string    `json:"hardness_status,omitempty"`
	HardnessValue     *int      `json:"hardness_value,omitempty"`
	Attempt           int       `json:"attempt"`
	ClimbingType      string    `json:"climbing_type"`
	Height            int       `json:"height"`
	Sections          []Section `json:"sections"`
	SectionsCount     int       `json:"sections_count"`
	SectionsDone      []int     `json:"sections_done"`
	MaxGradeValue     int       `json:"max_grade_value"`
	MaxGradeText      string    `json:"max_grade_text"`
	MinGradeValue     int       `json:"min_grade_value"`
	MinGradeText      string    `json:"min_grade_text"`
	Note              *int      `json:"note,omitempty"`
	Comment           string    `json:"comment,omitempty"`
	PrivateComment    string    `json:"private_comment,omitempty"`
	ReleasedAt        time.Time `json:"released_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateAscentRequest represents a request to log an ascent. Dates use
// the 2006-01-02 format.
type CreateAscentRequest struct {
	UserID           string `json:"user_id"`
	RouteID          string `json:"route_id"`
	AscentStatus     string `json:"ascent_status"`
	RopingStatus     string `json:"roping_status"`
	HardnessStatus   string `json:"hardness_status,omitempty"`
	Attempt          int    `json:"attempt"`
	Note             *int   `json:"note,omitempty"`
	Comment          string `json:"comment,omitempty"`
	PrivateComment   string `json:"private_comment,omitempty"`
	ReleasedAt       string `json:"released_at"`
	SelectedSections []int  `json:"selected_sections"`
}

// UpdateAscentRequest represents a resubmission of an existing ascent.
// Zero values and nil pointers mean "leave unchanged".
type UpdateAscentRequest struct {
	AscentStatus     string  `json:"ascent_status,omitempty"`
	RopingStatus     string  `json:"roping_status,omitempty"`
	HardnessStatus   string  `json:"hardness_status,omitempty"`
	Attempt          *int    `json:"attempt,omitempty"`
	Note             *int    `json:"note,omitempty"`
	Comment          *string `json:"comment,omitempty"`
	PrivateComment   *string `json:"private_comment,omitempty"`
	ReleasedAt       string  `json:"released_at,omitempty"`
	SelectedSections []int   `json:"selected_sections,omitempty"`
}

// ClimbingSession represents a climbing session response
type ClimbingSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SessionDate  time.Time `json:"session_date"`
	CreatedAt    time.Time `json:"created_at"`
	AscentsCount int       `json:"ascents_count"`
	Ascents      []*Ascent `json:"ascents,omitempty"`
}

// Figures represents a statistics snapshot response
type Figures struct {
	Countries     int  `json:"countries"`
	Regions       int  `json:"regions"`
	Crags         int  `json:"crags"`
	Ascents       int  `json:"ascents"`
	Meters        int  `json:"meters"`
	MaxGradeValue *int `json:"max_grade_value"`
}

// Tick represents a "to try" bookmark response
type Tick struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RouteID   string    `json:"route_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTickRequest represents a request to bookmark a route
type CreateTickRequest struct {
	UserID  string `json:"user_id"`
	RouteID string `json:"route_id"`
}

// APIError is an error response from the API
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "unknown", Message: "unknown error"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Fields = env.Error.Fields
		}
		return apiErr
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return nil
}

// --- Ascents ---

// CreateAscent logs a new ascent
func (c *Client) CreateAscent(ctx context.Context, req CreateAscentRequest) (*Ascent, error) {
	var ascent Ascent
	if err := c.do(ctx, http.MethodPost, "/api/v1/ascents", req, &ascent); err != nil {
		return nil, err
	}
	return &ascent, nil
}

// GetAscent retrieves an ascent by ID
func (c *Client) GetAscent(ctx context.Context, id string) (*Ascent, error) {
	var ascent Ascent
	if err := c.do(ctx, http.MethodGet, "/api/v1/ascents/"+id, nil, &ascent); err != nil {
		return nil, err
	}
	return &ascent, nil
}

// UpdateAscent resubmits an ascent
func (c *Client) UpdateAscent(ctx context.Context, id string, req UpdateAscentRequest) (*Ascent, error) {
	var ascent Ascent
	if err := c.do(ctx, http.MethodPut, "/api/v1/ascents/"+id, req, &ascent); err != nil {
		return nil, err
	}
	return &ascent, nil
}

// DeleteAscent removes an ascent
func (c *Client) DeleteAscent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/ascents/"+id, nil, nil)
}

// ListAscentsOptions contains options for listing ascents
type ListAscentsOptions struct {
	UserID        string
	RouteID       string
	AscentStatus  []string
	RopingStatus  []string
	ClimbingTypes []string
	Limit         int
	Offset        int
}

type ascentList struct {
	Ascents []*Ascent `json:"ascents"`
	Total   int       `json:"total"`
}

// ListAscents returns ascents matching options
func (c *Client) ListAscents(ctx context.Context, opts ListAscentsOptions) ([]*Ascent, error) {
	q := url.Values{}
	setIf(q, "user_id", opts.UserID)
	setIf(q, "route_id", opts.RouteID)
	setIf(q, "ascent_status", strings.Join(opts.AscentStatus, ","))
	setIf(q, "roping_status", strings.Join(opts.RopingStatus, ","))
	setIf(q, "climbing_type", strings.Join(opts.ClimbingTypes, ","))
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", opts.Offset))
	}

	var list ascentList
	if err := c.do(ctx, http.MethodGet, "/api/v1/ascents?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Ascents, nil
}

// --- Climbing sessions ---

type sessionList struct {
	Sessions []*ClimbingSession `json:"climbing_sessions"`
	Total    int                `json:"total"`
}

// ListSessions returns a user's climbing sessions
func (c *Client) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*ClimbingSession, error) {
	q := url.Values{}
	setIf(q, "user_id", userID)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", offset))
	}

	var list sessionList
	if err := c.do(ctx, http.MethodGet, "/api/v1/climbing_sessions?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Sessions, nil
}

// GetSession retrieves a climbing session with its ascents
func (c *Client) GetSession(ctx context.Context, id string) (*ClimbingSession, error) {
	var session ClimbingSession
	if err := c.do(ctx, http.MethodGet, "/api/v1/climbing_sessions/"+id, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// --- Statistics ---

// FiguresOptions restricts the ascent set figures are computed from
type FiguresOptions struct {
	LeadOnly      bool
	AscentStatus  []string
	RopingStatus  []string
	ClimbingTypes []string
}

// Figures returns the statistics snapshot for a user
func (c *Client) Figures(ctx context.Context, userID string, opts FiguresOptions) (*Figures, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	if opts.LeadOnly {
		q.Set("lead_only", "true")
	}
	setIf(q, "ascent_status", strings.Join(opts.AscentStatus, ","))
	setIf(q, "roping_status", strings.Join(opts.RopingStatus, ","))
	setIf(q, "climbing_type", strings.Join(opts.ClimbingTypes, ","))

	var figures Figures
	if err := c.do(ctx, http.MethodGet, "/api/v1/figures?"+q.Encode(), nil, &figures); err != nil {
		return nil, err
	}
	return &figures, nil
}

// --- Ticks ---

type tickList struct {
	Ticks []*Tick `json:"ticks"`
	Total int     `json:"total"`
}

// ListTicks returns a user's tick list
func (c *Client) ListTicks(ctx context.Context, userID string) ([]*Tick, error) {
	q := url.Values{}
	q.Set("user_id", userID)

	var list tickList
	if err := c.do(ctx, http.MethodGet, "/api/v1/ticks?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Ticks, nil
}

// CreateTick bookmarks a route on a user's "to try" list
func (c *Client) CreateTick(ctx context.Context, req CreateTickRequest) (*Tick, error) {
	var tick Tick
	if err := c.do(ctx, http.MethodPost, "/api/v1/ticks", req, &tick); err != nil {
		return nil, err
	}
	return &tick, nil
}

// DeleteTick removes a tick
func (c *Client) DeleteTick(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/ticks/"+id, nil, nil)
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
