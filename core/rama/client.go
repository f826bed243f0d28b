package rama

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"os"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/tommy-mor/rama-go/core/topology"
	"github.com/tommy-mor/rama-go/internal/codec"
)

// DefaultMaxRedirects bounds how many 308 responses a single operation
// follows before giving up with ErrMaxRedirects.
const DefaultMaxRedirects = 5

type ClientOptions struct {
	// ConductorURL is the well-known entry point of the cluster,
	// e.g. "http://localhost:8888". Required.
	ConductorURL string

	// HTTP sends requests. Defaults to an *http.Client with a 30s timeout
	// and automatic redirect following disabled.
	HTTP Doer

	// Topology caches advertised supervisors per module. Defaults to an
	// unbounded in-memory map shared by all operations on this client.
	Topology topology.Cache

	// MaxRedirects bounds the 308-follow loop. Defaults to DefaultMaxRedirects.
	MaxRedirects int

	// Metrics receives instrumentation. Defaults to a no-op implementation.
	Metrics ClientMetrics

	// Log for diagnostics. Defaults to slog.Default().
	Log *slog.Logger

	// IntN supplies randomness for supervisor selection; it must return a
	// uniform value in [0, n). Defaults to math/rand/v2. Tests inject a
	// deterministic source here.
	IntN func(n int) int
}

// Client routes module operations to whichever supervisor currently serves
// them. Safe for concurrent use; all operations share the topology cache
// and nothing else.
type Client struct {
	base         *url.URL
	http         Doer
	topo         topology.Cache
	codec        codec.Codec
	maxRedirects int
	metrics      ClientMetrics
	log          *slog.Logger
	intn         func(n int) int
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ConductorURL == "" {
		return nil, fmt.Errorf("rama: ClientOptions.ConductorURL is required")
	}
	base, err := url.Parse(opts.ConductorURL)
	if err != nil {
		return nil, fmt.Errorf("rama: parse conductor url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("rama: conductor url %q is not absolute", opts.ConductorURL)
	}

	httpDoer := opts.HTTP
	if httpDoer == nil {
		httpDoer = defaultTransport()
	}
	topo := opts.Topology
	if topo == nil {
		topo = topology.NewMap()
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	m := opts.Metrics
	if m == nil {
		m = NopClientMetrics()
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	intn := opts.IntN
	if intn == nil {
		intn = rand.IntN
	}

	return &Client{
		base:         base,
		http:         httpDoer,
		topo:         topo,
		codec:        codec.JSONCodec{},
		maxRedirects: maxRedirects,
		metrics:      m,
		log:          log.With(slog.String("client", "rama-"+gonanoid.Must(6))),
		intn:         intn,
	}, nil
}

// ConductorFromEnv returns the conductor URL from RAMA_CONDUCTOR_URL, or the
// local default when unset.
func ConductorFromEnv() string {
	if v := os.Getenv("RAMA_CONDUCTOR_URL"); v != "" {
		return v
	}
	return "http://localhost:8888"
}

// Topology exposes the client's topology cache, mainly so callers can seed
// or inspect it.
func (c *Client) Topology() topology.Cache { return c.topo }

// Module scopes the client to one named module.
func (c *Client) Module(name string) *Module {
	return &Module{c: c, name: name}
}

type Module struct {
	c    *Client
	name string
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Depot scopes to an append-only depot within the module, e.g. "*words-depot".
func (m *Module) Depot(name string) *Depot {
	return &Depot{m: m, name: name}
}

// PState scopes to a queryable PState within the module, e.g. "$$word-counts".
func (m *Module) PState(name string) *PState {
	return &PState{m: m, name: name}
}
