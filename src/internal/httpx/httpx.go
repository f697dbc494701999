package httpx

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Doer is the minimal HTTP client interface used across packages.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserAgent identifies this toolkit on all outbound requests.
const UserAgent = "bvbrcdata/1.0 (+https://www.bv-brc.org)"

// RequestIDHeader carries a per-request id so server logs can be correlated.
const RequestIDHeader = "X-Request-Id"

// SetUA sets the UserAgent header on the request.
func SetUA(req *http.Request) {
	if req != nil {
		req.Header.Set("User-Agent", UserAgent)
	}
}

// SetRequestID sets a fresh request id unless one is already present, and returns it.
func SetRequestID(req *http.Request) string {
	if req == nil {
		return ""
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	return id
}

// Limited wraps a Doer with a token bucket. Do blocks until a token is
// available or the request context is done.
type Limited struct {
	next    Doer
	limiter *rate.Limiter
}

// NewLimited returns d unchanged when perSecond <= 0.
func NewLimited(d Doer, perSecond float64, burst int) Doer {
	if perSecond <= 0 {
		return d
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{next: d, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *Limited) Do(req *http.Request) (*http.Response, error) {
	if err := l.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return l.next.Do(req)
}
