// Package adminapi is the HTTP client for the team Admin API.
package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

// Admin API endpoints.
const (
	EndpointMembers      = "/teams/members"
	EndpointSpend        = "/teams/spend"
	EndpointDailyUsage   = "/teams/daily-usage-data"
	EndpointUsageEvents  = "/teams/filtered-usage-events"
	DefaultBaseURL       = "https://api.cursor.com"
	DefaultEventPageSize = 100

	// maxEventPages bounds FetchAllUsageEvents.
	maxEventPages = 200
)

// ErrNoData wraps every failure of a typed fetch. Callers treat it as
// "no data available" and do not distinguish causes.
var ErrNoData = errors.New("no data available")

// CallRecorder receives one entry per upstream call.
type CallRecorder interface {
	RecordCall(call models.APICall)
}

// Config holds configuration for the client.
type Config struct {
	BaseURL string
	// Timeout of zero leaves calls unbounded.
	Timeout   time.Duration
	Transport http.RoundTripper
	Recorder  CallRecorder
}

// Client issues authenticated requests to the Admin API.
type Client struct {
	http     *resty.Client
	cred     Credential
	recorder CallRecorder
}

// New creates a client that authenticates every request with cred.
func New(cred Credential, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetLogger(logger.Logger).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.Transport != nil {
		rc.SetTransport(cfg.Transport)
	}

	return &Client{
		http:     rc,
		cred:     cred,
		recorder: cfg.Recorder,
	}
}

// SpendQuery filters /teams/spend. Zero fields are omitted from the body.
type SpendQuery struct {
	SearchTerm string
	StartDate  int64
	EndDate    int64
}

func (q SpendQuery) body() map[string]any {
	body := map[string]any{}
	if q.SearchTerm != "" {
		body["searchTerm"] = q.SearchTerm
	}
	if q.StartDate != 0 {
		body["startDate"] = q.StartDate
	}
	if q.EndDate != 0 {
		body["endDate"] = q.EndDate
	}
	return body
}

// UsageEventsQuery filters /teams/filtered-usage-events.
type UsageEventsQuery struct {
	Email     string
	StartDate int64
	EndDate   int64
	Page      int
	PageSize  int
}

func (q UsageEventsQuery) body() map[string]any {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultEventPageSize
	}
	body := map[string]any{
		"page":     page,
		"pageSize": pageSize,
	}
	if q.StartDate != 0 {
		body["startDate"] = q.StartDate
	}
	if q.EndDate != 0 {
		body["endDate"] = q.EndDate
	}
	if q.Email != "" {
		body["email"] = q.Email
	}
	return body
}

// FetchMembers returns the team members list.
func (c *Client) FetchMembers(ctx context.Context) ([]models.TeamMember, error) {
	body, err := c.fetch(ctx, http.MethodGet, EndpointMembers, nil)
	if err != nil {
		return nil, err
	}
	members, err := decodeMembers(body)
	if err != nil {
		return nil, c.decodeFailed(EndpointMembers, err)
	}
	return members, nil
}

// FetchSpend returns per-member spend for the current billing cycle.
func (c *Client) FetchSpend(ctx context.Context, q SpendQuery) (*models.SpendSummary, error) {
	body, err := c.fetch(ctx, http.MethodPost, EndpointSpend, q.body())
	if err != nil {
		return nil, err
	}
	summary, err := decodeSpend(body)
	if err != nil {
		return nil, c.decodeFailed(EndpointSpend, err)
	}
	return summary, nil
}

// FetchDailyUsage returns one record per user per day within period.
func (c *Client) FetchDailyUsage(ctx context.Context, period models.Period) (*models.DailyUsageReport, error) {
	req := map[string]any{
		"startDate": period.StartMillis(),
		"endDate":   period.EndMillis(),
	}
	body, err := c.fetch(ctx, http.MethodPost, EndpointDailyUsage, req)
	if err != nil {
		return nil, err
	}
	report, err := decodeDailyUsage(body)
	if err != nil {
		return nil, c.decodeFailed(EndpointDailyUsage, err)
	}
	return report, nil
}

// FetchUsageEvents returns one page of usage events.
func (c *Client) FetchUsageEvents(ctx context.Context, q UsageEventsQuery) (*models.UsageEventsPage, error) {
	body, err := c.fetch(ctx, http.MethodPost, EndpointUsageEvents, q.body())
	if err != nil {
		return nil, err
	}
	page, err := decodeUsageEvents(body)
	if err != nil {
		return nil, c.decodeFailed(EndpointUsageEvents, err)
	}
	return page, nil
}

// FetchAllUsageEvents follows pagination from q.Page until the last page.
// A failure on any page fails the whole fetch.
func (c *Client) FetchAllUsageEvents(ctx context.Context, q UsageEventsQuery) ([]models.UsageEvent, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	var events []models.UsageEvent
	for i := 0; i < maxEventPages; i++ {
		page, err := c.FetchUsageEvents(ctx, q)
		if err != nil {
			return nil, err
		}
		events = append(events, page.Events...)
		if !page.Pagination.HasNextPage || len(page.Events) == 0 {
			return events, nil
		}
		q.Page++
	}

	logger.Warn("usage events truncated", "pages", maxEventPages)
	return events, nil
}

// fetch performs a typed call and returns the body of a 200 response.
func (c *Client) fetch(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.cred.Header()).
		SetHeader("X-Request-ID", requestID)
	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	start := time.Now()
	resp, err := req.Execute(method, endpoint)
	call := models.APICall{
		Timestamp:  start,
		Source:     models.SourceClient,
		Method:     method,
		Endpoint:   endpoint,
		DurationMs: time.Since(start).Milliseconds(),
		RequestID:  requestID,
	}

	if err != nil {
		call.Error = err.Error()
		c.record(call)
		logger.Error("admin API request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNoData, method, endpoint, err)
	}

	call.StatusCode = resp.StatusCode()
	if resp.StatusCode() != http.StatusOK {
		call.Error = http.StatusText(resp.StatusCode())
		c.record(call)
		logger.Error("admin API returned non-200",
			"method", method, "endpoint", endpoint, "status", resp.StatusCode(), "body", snippet(resp.Body()))
		return nil, fmt.Errorf("%w: %s %s: status %d: %s",
			ErrNoData, method, endpoint, resp.StatusCode(), snippet(resp.Body()))
	}

	c.record(call)
	return resp.Body(), nil
}

func (c *Client) decodeFailed(endpoint string, err error) error {
	logger.Error("failed to decode admin API response", "endpoint", endpoint, "error", err)
	return fmt.Errorf("%w: decode %s: %v", ErrNoData, endpoint, err)
}

func (c *Client) record(call models.APICall) {
	if c.recorder != nil {
		c.recorder.RecordCall(call)
	}
}

// snippet shortens a response body for error messages.
func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
