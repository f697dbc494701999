package httpx

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type countingDoer struct{ n int }

func (c *countingDoer) Do(req *http.Request) (*http.Response, error) {
	c.n++
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("")), Header: make(http.Header)}, nil
}

func TestSetUA(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	if hv := req.Header.Get("User-Agent"); hv != "" {
		t.Fatalf("precondition: UA not empty: %q", hv)
	}
	SetUA(req)
	if hv := req.Header.Get("User-Agent"); hv != UserAgent {
		t.Fatalf("SetUA: want %q, got %q", UserAgent, hv)
	}
	// idempotent
	SetUA(req)
	if hv := req.Header.Get("User-Agent"); hv != UserAgent {
		t.Fatalf("SetUA idempotent: want %q, got %q", UserAgent, hv)
	}
	SetUA(nil)
}

func TestSetRequestID(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	id := SetRequestID(req)
	if len(id) != 36 || req.Header.Get(RequestIDHeader) != id {
		t.Fatalf("SetRequestID: %q / %q", id, req.Header.Get(RequestIDHeader))
	}
	if again := SetRequestID(req); again != id {
		t.Fatalf("SetRequestID should keep existing id: %q != %q", again, id)
	}
}

func TestNewLimitedDisabled(t *testing.T) {
	d := &countingDoer{}
	if got := NewLimited(d, 0, 5); got != Doer(d) {
		t.Fatalf("NewLimited(0) should return the wrapped doer")
	}
}

func TestLimitedHonoursContext(t *testing.T) {
	d := &countingDoer{}
	l := NewLimited(d, 0.001, 1)
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	if _, err := l.Do(req); err != nil {
		t.Fatalf("first request uses the burst token: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req2, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://example.com", nil)
	if _, err := l.Do(req2); err == nil {
		t.Fatalf("expected limiter wait to fail before deadline")
	}
	if d.n != 1 {
		t.Fatalf("wrapped doer calls: want 1, got %d", d.n)
	}
}
