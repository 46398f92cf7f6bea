package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

// InsertAPICall logs an API call to the database.
func (db *DB) InsertAPICall(call *models.APICall) error {
	query := `
		INSERT INTO api_calls (
			timestamp, source, method, endpoint, status_code, duration_ms,
			error, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := call.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	source := call.Source
	if source == "" {
		source = models.SourceClient
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(timestampLayout),
		source,
		call.Method,
		call.Endpoint,
		call.StatusCode,
		call.DurationMs,
		nullString(call.Error),
		nullString(call.RequestID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert API call: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		call.ID = id
	}

	return nil
}

// RecordCall stores a call and logs instead of failing; the call log must
// never break the request that produced it.
func (db *DB) RecordCall(call models.APICall) {
	if err := db.InsertAPICall(&call); err != nil {
		logger.Warn("failed to record API call", "endpoint", call.Endpoint, "error", err)
	}
}

// GetRecentAPICalls returns the most recent API calls, newest first.
func (db *DB) GetRecentAPICalls(limit int) ([]models.APICall, error) {
	query := `
		SELECT id, timestamp, source, method, endpoint, status_code,
			   duration_ms, error, request_id
		FROM api_calls
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent API calls: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var calls []models.APICall
	for rows.Next() {
		var call models.APICall
		var errStr, reqID sql.NullString

		err := rows.Scan(
			&call.ID,
			&call.Timestamp,
			&call.Source,
			&call.Method,
			&call.Endpoint,
			&call.StatusCode,
			&call.DurationMs,
			&errStr,
			&reqID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API call: %w", err)
		}

		call.Error = errStr.String
		call.RequestID = reqID.String
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

// GetEndpointStats returns call counts, error counts and average latency per
// endpoint over the last hours.
func (db *DB) GetEndpointStats(hours int) ([]models.EndpointStats, error) {
	query := `
		SELECT
			endpoint,
			COUNT(*) as total_calls,
			SUM(CASE WHEN error IS NOT NULL OR status_code < 200 OR status_code >= 300 THEN 1 ELSE 0 END) as error_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration
		FROM api_calls
		WHERE timestamp >= datetime('now', ?)
		GROUP BY endpoint
		ORDER BY total_calls DESC, endpoint ASC
	`

	rows, err := db.QueryContext(context.Background(), query, fmt.Sprintf("-%d hours", hours))
	if err != nil {
		return nil, fmt.Errorf("failed to query endpoint stats: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var stats []models.EndpointStats
	for rows.Next() {
		var s models.EndpointStats
		if err := rows.Scan(&s.Endpoint, &s.TotalCalls, &s.ErrorCount, &s.AvgDurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
