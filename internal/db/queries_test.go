package db

import (
	"testing"
	"time"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

func TestInsertAPICall(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	call := &models.APICall{
		Source:     models.SourceClient,
		Method:     "GET",
		Endpoint:   "/teams/members",
		StatusCode: 200,
		DurationMs: 150,
		RequestID:  "req-123",
	}

	if err := db.InsertAPICall(call); err != nil {
		t.Fatalf("InsertAPICall() failed: %v", err)
	}

	if call.ID == 0 {
		t.Error("InsertAPICall() should set ID")
	}
}

func TestGetRecentAPICalls(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Now().Add(-time.Hour)
	calls := []models.APICall{
		{Method: "GET", Endpoint: "/teams/members", StatusCode: 200, Timestamp: base},
		{Method: "POST", Endpoint: "/teams/spend", StatusCode: 401, Timestamp: base.Add(time.Minute), Source: models.SourceProxy},
		{Method: "POST", Endpoint: "/teams/daily-usage-data", Error: "connection refused", Timestamp: base.Add(2 * time.Minute)},
	}
	for i := range calls {
		if err := db.InsertAPICall(&calls[i]); err != nil {
			t.Fatalf("InsertAPICall() failed: %v", err)
		}
	}

	got, err := db.GetRecentAPICalls(2)
	if err != nil {
		t.Fatalf("GetRecentAPICalls() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetRecentAPICalls() returned %d calls, want 2", len(got))
	}

	if got[0].Endpoint != "/teams/daily-usage-data" {
		t.Errorf("newest endpoint = %q, want /teams/daily-usage-data", got[0].Endpoint)
	}
	if got[0].Error != "connection refused" {
		t.Errorf("Error = %q, want connection refused", got[0].Error)
	}
	if got[0].Source != models.SourceClient {
		t.Errorf("default Source = %q, want client", got[0].Source)
	}
	if got[1].Source != models.SourceProxy {
		t.Errorf("Source = %q, want proxy", got[1].Source)
	}
	if got[1].StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", got[1].StatusCode)
	}
}

func TestGetRecentAPICalls_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	got, err := db.GetRecentAPICalls(10)
	if err != nil {
		t.Fatalf("GetRecentAPICalls() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no calls, got %d", len(got))
	}
}

func TestGetEndpointStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	db.RecordCall(models.APICall{Method: "GET", Endpoint: "/teams/members", StatusCode: 200, DurationMs: 100, Timestamp: now})
	db.RecordCall(models.APICall{Method: "GET", Endpoint: "/teams/members", StatusCode: 500, DurationMs: 300, Timestamp: now})
	db.RecordCall(models.APICall{Method: "POST", Endpoint: "/teams/spend", StatusCode: 200, DurationMs: 50, Timestamp: now})
	db.RecordCall(models.APICall{Method: "POST", Endpoint: "/teams/spend", StatusCode: 200, DurationMs: 50, Timestamp: now.Add(-72 * time.Hour)})

	stats, err := db.GetEndpointStats(24)
	if err != nil {
		t.Fatalf("GetEndpointStats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(stats))
	}

	members := stats[0]
	if members.Endpoint != "/teams/members" {
		t.Fatalf("first endpoint = %q, want /teams/members", members.Endpoint)
	}
	if members.TotalCalls != 2 || members.ErrorCount != 1 {
		t.Errorf("members stats = %+v, want 2 calls and 1 error", members)
	}
	if members.AvgDurationMs != 200 {
		t.Errorf("AvgDurationMs = %v, want 200", members.AvgDurationMs)
	}

	if stats[1].TotalCalls != 1 {
		t.Errorf("spend calls in window = %d, want 1", stats[1].TotalCalls)
	}
}

func TestPrune(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	db.RecordCall(models.APICall{Method: "GET", Endpoint: "/old", StatusCode: 200, Timestamp: time.Now().AddDate(0, 0, -45)})
	db.RecordCall(models.APICall{Method: "GET", Endpoint: "/new", StatusCode: 200})

	removed, err := db.Prune(DefaultRetentionDays)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d rows, want 1", removed)
	}

	calls, err := db.GetRecentAPICalls(10)
	if err != nil {
		t.Fatalf("GetRecentAPICalls() failed: %v", err)
	}
	if len(calls) != 1 || calls[0].Endpoint != "/new" {
		t.Errorf("remaining calls = %+v, want only /new", calls)
	}
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("nullString(\"x\") = %+v", ns)
	}
}
