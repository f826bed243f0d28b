package rama

import (
	"net/http"
	"time"
)

// Doer sends a single HTTP request. *http.Client satisfies it; tests swap
// in scripted implementations. The client never follows HTTP redirects
// through the transport: 308 handling is protocol logic and lives in the
// routing loop, so implementations must return redirect responses as-is.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// defaultTransport returns the stock HTTP client: a request timeout and
// automatic redirect following disabled.
func defaultTransport() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
