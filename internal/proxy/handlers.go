package proxy

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/mailer"
	"github.com/j-veylop/team-usage-dashboard/internal/services/adminapi"
	"github.com/j-veylop/team-usage-dashboard/internal/spreadsheet"
)

// handleTeams relays the request upstream and copies status and body back
// verbatim.
func (s *Server) handleTeams(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "message": err.Error()})
		return
	}

	resp, err := s.forwarder.Forward(c.Request.Context(), adminapi.ForwardRequest{
		Method:       c.Request.Method,
		PathAndQuery: c.Request.URL.RequestURI(),
		ContentType:  c.GetHeader("Content-Type"),
		RequestID:    c.GetString(requestIDKey),
		Body:         body,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Connection Error", "message": err.Error()})
		return
	}

	h := c.Writer.Header()
	s.cfg.Headers.Copy(h, resp.Header)
	setCORS(h)
	c.Status(resp.StatusCode)
	if _, err := c.Writer.Write(resp.Body); err != nil {
		logger.Warn("failed to write proxied body", "path", c.Request.URL.Path, "error", err)
	}
}

func (s *Server) handleSendEmail(c *gin.Context) {
	var req mailer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		sendEmailFailed(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	logger.Info("email send requested",
		"recipients", len(req.ToEmails), "attachment", req.Attachment != nil, "request_id", c.GetString(requestIDKey))

	res, err := s.mailer.Send(c.Request.Context(), req)
	if err != nil {
		sendEmailFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Email sent to %d recipient(s).", len(res.SentTo)),
		"sent_to":   res.SentTo,
		"timestamp": req.Timestamp,
	})
}

func sendEmailFailed(c *gin.Context, err error) {
	logger.Error("email send failed", "request_id", c.GetString(requestIDKey), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Failed to send email.",
		"message": err.Error(),
	})
}

func (s *Server) handleGenerateXLSX(c *gin.Context) {
	var wb spreadsheet.Workbook
	if err := c.ShouldBindJSON(&wb); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid Request", "message": err.Error()})
		return
	}

	data, err := spreadsheet.Build(wb)
	if err != nil {
		logger.Error("xlsx generation failed", "filename", wb.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Spreadsheet Error", "message": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, wb.FileName()))
	c.Data(http.StatusOK, spreadsheet.ContentType, data)
}

// handleNoRoute serves static files for GET and HEAD, 404 JSON otherwise.
// Dot files such as .env are never served.
func (s *Server) handleNoRoute(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "message": c.Request.URL.Path})
		return
	}

	for _, part := range strings.Split(c.Request.URL.Path, "/") {
		if strings.HasPrefix(part, ".") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "message": c.Request.URL.Path})
			return
		}
	}

	http.FileServer(http.Dir(s.cfg.StaticDir)).ServeHTTP(c.Writer, c.Request)
}
