package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

// ForwardRequest is a raw request relayed on behalf of a browser.
type ForwardRequest struct {
	Method string
	// PathAndQuery is the request URI, e.g. "/teams/members?x=1".
	PathAndQuery string
	ContentType  string
	RequestID    string
	Body         []byte
}

// ForwardResponse is the upstream answer, untouched.
type ForwardResponse struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// Forward relays req upstream with the client's credential. Any HTTP status
// is returned as a response; only transport failures are errors.
func (c *Client) Forward(ctx context.Context, req ForwardRequest) (*ForwardResponse, error) {
	r := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.cred.Header())
	if req.RequestID != "" {
		r.SetHeader("X-Request-ID", req.RequestID)
	}
	if len(req.Body) > 0 {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		r.SetHeader("Content-Type", contentType).SetBody(req.Body)
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, req.PathAndQuery)
	call := models.APICall{
		Timestamp:  start,
		Source:     models.SourceProxy,
		Method:     req.Method,
		Endpoint:   stripQuery(req.PathAndQuery),
		DurationMs: time.Since(start).Milliseconds(),
		RequestID:  req.RequestID,
	}

	if err != nil {
		call.Error = err.Error()
		c.record(call)
		logger.Error("proxy upstream request failed",
			"method", req.Method, "path", req.PathAndQuery, "request_id", req.RequestID, "error", err)
		return nil, fmt.Errorf("failed to forward %s %s: %w", req.Method, req.PathAndQuery, err)
	}

	call.StatusCode = resp.StatusCode()
	c.record(call)

	return &ForwardResponse{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

func stripQuery(pathAndQuery string) string {
	path, _, _ := strings.Cut(pathAndQuery, "?")
	return path
}
