package rama

import "github.com/tommy-mor/rama-go/core/metrics"

// ClientMetrics defines the metrics interface for the routing client.
// All methods are thread-safe.
type ClientMetrics interface {
	// Request outcomes, labelled by operation (append, select, selectOne).
	RequestDuration(op string) metrics.Timer
	RequestCompleted(op string, success bool)

	// Routing
	RedirectFollowed(module string)
	TopologyRefreshed(module string, endpoints int)

	// Transport errors: send, decode
	TransportError(errorType string)
}

// nopClientMetrics is a no-op implementation of ClientMetrics.
type nopClientMetrics struct{}

func (nopClientMetrics) RequestDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopClientMetrics) RequestCompleted(string, bool)        {}
func (nopClientMetrics) RedirectFollowed(string)              {}
func (nopClientMetrics) TopologyRefreshed(string, int)        {}
func (nopClientMetrics) TransportError(string)                {}

// NopClientMetrics returns a no-op ClientMetrics implementation.
func NopClientMetrics() ClientMetrics { return nopClientMetrics{} }
