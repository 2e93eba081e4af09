package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func capturePush(t *testing.T) (*httptest.Server, *PushRequest) {
	t.Helper()
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %q, want /loki/api/v1/push", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Errorf("decoding push body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	return srv, &got
}

func TestPushEvent_SetsJobLabelAndTimestamp(t *testing.T) {
	srv, got := capturePush(t)
	defer srv.Close()

	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	err := PushEvent(context.Background(), srv.URL, ts, "hello", map[string]string{"event_type": "http_request"})
	if err != nil {
		t.Fatalf("PushEvent() error = %v", err)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(got.Streams))
	}
	s := got.Streams[0]
	if s.Stream["job"] != "accounts" {
		t.Errorf("job label = %q, want %q", s.Stream["job"], "accounts")
	}
	if s.Stream["event_type"] != "http_request" {
		t.Errorf("event_type label = %q, want %q", s.Stream["event_type"], "http_request")
	}
	if len(s.Values) != 1 || len(s.Values[0]) != 2 {
		t.Fatalf("values = %v, want one [ts, line] pair", s.Values)
	}
	if s.Values[0][1] != "hello" {
		t.Errorf("line = %q, want %q", s.Values[0][1], "hello")
	}
}

func TestPushEvent_SanitizesLabelValues(t *testing.T) {
	srv, got := capturePush(t)
	defer srv.Close()

	err := PushEvent(context.Background(), srv.URL, time.Now(), "line", map[string]string{"source": "a b{c}"})
	if err != nil {
		t.Fatalf("PushEvent() error = %v", err)
	}
	if v := got.Streams[0].Stream["source"]; v != "a_b_c_" {
		t.Errorf("source label = %q, want sanitized %q", v, "a_b_c_")
	}
}

func TestPushEvent_EmptyBaseURL(t *testing.T) {
	if err := PushEvent(context.Background(), "", time.Now(), "line", nil); err == nil {
		t.Error("PushEvent() with empty base URL = nil, want error")
	}
}

func TestPushEvent_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := PushEvent(context.Background(), srv.URL, time.Now(), "line", nil); err == nil {
		t.Error("PushEvent() with 500 response = nil, want error")
	}
}

func TestPushEventJSON_ExtractsLabelsAndTimestamp(t *testing.T) {
	srv, got := capturePush(t)
	defer srv.Close()

	raw := []byte(`{"id":"evt-1","userId":"user-1","eventType":"http_request","source":"server","createdAt":"2026-08-29T10:00:00Z"}`)
	if err := PushEventJSON(context.Background(), srv.URL, raw); err != nil {
		t.Fatalf("PushEventJSON() error = %v", err)
	}
	s := got.Streams[0]
	if s.Stream["user_id"] != "user-1" {
		t.Errorf("user_id label = %q, want %q", s.Stream["user_id"], "user-1")
	}
	if s.Stream["event_type"] != "http_request" {
		t.Errorf("event_type label = %q, want %q", s.Stream["event_type"], "http_request")
	}
	wantTS := strconv.FormatInt(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC).UnixNano(), 10)
	if s.Values[0][0] != wantTS {
		t.Errorf("timestamp = %q, want %q", s.Values[0][0], wantTS)
	}
	if s.Values[0][1] != string(raw) {
		t.Errorf("line = %q, want raw event JSON", s.Values[0][1])
	}
}

func TestPushEventJSON_UnparseableFallsBackToRawLine(t *testing.T) {
	srv, got := capturePush(t)
	defer srv.Close()

	if err := PushEventJSON(context.Background(), srv.URL, []byte("not json")); err != nil {
		t.Fatalf("PushEventJSON() error = %v", err)
	}
	s := got.Streams[0]
	if s.Values[0][1] != "not json" {
		t.Errorf("line = %q, want raw input", s.Values[0][1])
	}
	if _, ok := s.Stream["event_type"]; ok {
		t.Error("event_type label present, want none for unparseable input")
	}
}
