package rama

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommy-mor/rama-go/core/topology"
)

// scriptedDoer plays back a fixed sequence of responses while recording
// every request it sees.
type scriptedDoer struct {
	mu     sync.Mutex
	steps  []scriptStep
	urls   []string
	bodies []string
}

type scriptStep struct {
	status int
	body   string
	header http.Header
	err    error
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	body, _ := io.ReadAll(req.Body)
	d.urls = append(d.urls, req.URL.String())
	d.bodies = append(d.bodies, string(body))

	if len(d.steps) == 0 {
		return nil, fmt.Errorf("scripted doer: no response for request %d", len(d.urls))
	}
	step := d.steps[0]
	d.steps = d.steps[1:]

	if step.err != nil {
		return nil, step.err
	}
	h := step.header
	if h == nil {
		h = http.Header{}
	}
	return &http.Response{
		StatusCode: step.status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(step.body)),
		Request:    req,
	}, nil
}

func (d *scriptedDoer) requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}

func ok(body string) scriptStep {
	return scriptStep{status: http.StatusOK, body: body}
}

func redirect(location string, addrs ...string) scriptStep {
	h := http.Header{}
	h.Set("Location", location)
	locs, _ := json.Marshal(addrs)
	h.Set("Supervisor-Locations", string(locs))
	return scriptStep{status: http.StatusPermanentRedirect, header: h}
}

func newTestClient(t *testing.T, d Doer, mutate ...func(*ClientOptions)) *Client {
	t.Helper()

	opts := ClientOptions{
		ConductorURL: "http://conductor:8888",
		HTTP:         d,
		Log:          slog.New(slog.DiscardHandler),
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.Error(t, err)

	_, err = NewClient(ClientOptions{ConductorURL: "http://bad url with spaces"})
	require.Error(t, err)

	// No scheme means no host either; must fail fast.
	_, err = NewClient(ClientOptions{ConductorURL: "localhost:8888"})
	require.Error(t, err)
}

func TestConductorFromEnv(t *testing.T) {
	t.Setenv("RAMA_CONDUCTOR_URL", "http://rama.internal:8888")
	assert.Equal(t, "http://rama.internal:8888", ConductorFromEnv())

	t.Setenv("RAMA_CONDUCTOR_URL", "")
	assert.Equal(t, "http://localhost:8888", ConductorFromEnv())
}

func TestAppend_Direct(t *testing.T) {
	d := &scriptedDoer{steps: []scriptStep{ok(`{"count-topology": 17}`)}}
	c := newTestClient(t, d)

	acks, err := c.Module("com.example/wordcount").Depot("*words-depot").Append(t.Context(), "hello")
	require.NoError(t, err)
	require.Len(t, acks, 1)
	assert.EqualValues(t, 17, acks["count-topology"])

	require.Equal(t, []string{
		"http://conductor:8888/rest/com.example/wordcount/depot/*words-depot/append",
	}, d.requests())
	// ackLevel omitted means the server default applies.
	assert.JSONEq(t, `{"data": "hello"}`, d.bodies[0])
}

func TestAppend_AckLevel(t *testing.T) {
	d := &scriptedDoer{steps: []scriptStep{ok(`{}`)}}
	c := newTestClient(t, d)

	acks, err := c.Module("m").Depot("*d").Append(t.Context(), map[string]any{"word": "hi"},
		WithAckLevel(AckLevelAppendAck))
	require.NoError(t, err)
	assert.Empty(t, acks)

	assert.JSONEq(t, `{"data": {"word": "hi"}, "ackLevel": "appendAck"}`, d.bodies[0])
}

func TestSelect_SendsPathArray(t *testing.T) {
	d := &scriptedDoer{steps: []scriptStep{ok(`[1, 2, 3]`)}}
	c := newTestClient(t, d)

	got, err := Select[int](t.Context(), c.Module("m").PState("$$counts"), NewPath().Key("counts").Must("hello"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	require.Equal(t, []string{"http://conductor:8888/rest/m/pstate/$$counts/select"}, d.requests())
	assert.JSONEq(t, `["counts", ["must", "hello"]]`, d.bodies[0])
}

func TestSelectOne_Typed(t *testing.T) {
	type profile struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	d := &scriptedDoer{steps: []scriptStep{ok(`{"name": "tommy", "age": 30}`)}}
	c := newTestClient(t, d)

	got, err := SelectOne[profile](t.Context(), c.Module("m").PState("$$profiles"), NewPath().Key("tommy"))
	require.NoError(t, err)
	assert.Equal(t, profile{Name: "tommy", Age: 30}, got)

	require.Equal(t, []string{"http://conductor:8888/rest/m/pstate/$$profiles/selectOne"}, d.requests())
}

func TestSelect_PathConsumed(t *testing.T) {
	d := &scriptedDoer{steps: []scriptStep{ok(`[]`), ok(`[]`)}}
	c := newTestClient(t, d)
	ps := c.Module("m").PState("$$p")

	path := NewPath().All()
	_, err := Select[any](t.Context(), ps, path)
	require.NoError(t, err)

	_, err = Select[any](t.Context(), ps, path)
	require.ErrorIs(t, err, ErrQueryConsumed)
	// The second call never reached the wire.
	assert.Len(t, d.requests(), 1)
}

func TestExecute_RedirectThenSuccess(t *testing.T) {
	d := &scriptedDoer{steps: []scriptStep{
		redirect("http://sup1:1001/rest/m/depot/*d/append", "sup1:1001", "sup2:1002"),
		ok(`{}`),
	}}
	c := newTestClient(t, d, func(o *ClientOptions) {
		o.IntN = func(int) int { return 0 }
	})

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.NoError(t, err)

	require.Equal(t, []string{
		"http://conductor:8888/rest/m/depot/*d/append",
		// Second attempt routes via the freshly cached topology.
		"http://sup1:1001/rest/m/depot/*d/append",
	}, d.requests())

	eps, cached := c.Topology().Lookup("m")
	require.True(t, cached)
	assert.Equal(t, []topology.Endpoint{
		{Host: "sup1", Port: 1001},
		{Host: "sup2", Port: 1002},
	}, eps)
}

func TestExecute_KRedirectsNeedKPlusOneRequests(t *testing.T) {
	const k = 3
	d := &scriptedDoer{steps: []scriptStep{
		redirect("http://sup1:1001/rest/m/pstate/$$p/select", "sup1:1001"),
		redirect("http://sup2:1002/rest/m/pstate/$$p/select", "sup2:1002"),
		redirect("http://sup3:1003/rest/m/pstate/$$p/select", "sup3:1003"),
		ok(`[]`),
	}}
	c := newTestClient(t, d, func(o *ClientOptions) {
		o.IntN = func(int) int { return 0 }
	})

	_, err := Select[any](t.Context(), c.Module("m").PState("$$p"), NewPath().All())
	require.NoError(t, err)
	assert.Len(t, d.requests(), k+1)

	// The cache holds the topology from the last redirect only.
	eps, cached := c.Topology().Lookup("m")
	require.True(t, cached)
	assert.Equal(t, []topology.Endpoint{{Host: "sup3", Port: 1003}}, eps)
}

func TestExecute_RedirectBudgetExhausted(t *testing.T) {
	const maxRedirects = 3
	var steps []scriptStep
	for i := 0; i < maxRedirects+1; i++ {
		steps = append(steps, redirect("http://sup1:1001/rest/m/depot/*d/append", "sup1:1001"))
	}
	d := &scriptedDoer{steps: steps}
	c := newTestClient(t, d, func(o *ClientOptions) {
		o.MaxRedirects = maxRedirects
	})

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.ErrorIs(t, err, ErrMaxRedirects)
	assert.LessOrEqual(t, len(d.requests()), maxRedirects)
}

func TestExecute_MissingLocation(t *testing.T) {
	h := http.Header{}
	h.Set("Supervisor-Locations", `["sup1:1001"]`)
	d := &scriptedDoer{steps: []scriptStep{{status: http.StatusPermanentRedirect, header: h}}}
	c := newTestClient(t, d)

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.ErrorIs(t, err, ErrMissingLocation)
}

func TestExecute_InvalidLocation(t *testing.T) {
	h := http.Header{}
	h.Set("Location", "/relative/only")
	h.Set("Supervisor-Locations", `["sup1:1001"]`)
	d := &scriptedDoer{steps: []scriptStep{{status: http.StatusPermanentRedirect, header: h}}}
	c := newTestClient(t, d)

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.ErrorIs(t, err, ErrInvalidLocation)
}

func TestExecute_MissingSupervisorLocationsKeepsCache(t *testing.T) {
	seeded := []topology.Endpoint{{Host: "old", Port: 9000}}

	topo := topology.NewMap()
	topo.Update("m", seeded)

	h := http.Header{}
	h.Set("Location", "http://sup1:1001/rest/m/depot/*d/append")
	d := &scriptedDoer{steps: []scriptStep{{status: http.StatusPermanentRedirect, header: h}}}
	c := newTestClient(t, d, func(o *ClientOptions) {
		o.Topology = topo
		o.IntN = func(int) int { return 0 }
	})

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.ErrorIs(t, err, ErrMissingSupervisorLocations)

	// The unusable redirect must not have touched the existing entry.
	eps, cached := topo.Lookup("m")
	require.True(t, cached)
	assert.Equal(t, seeded, eps)
}

func TestExecute_InvalidSupervisorLocations(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "not json", header: `sup1:1001`},
		{name: "not an array", header: `{"a": 1}`},
		{name: "bad host:port entry", header: `["sup1:1001", "nonsense"]`},
		{name: "non-text-safe bytes", header: "[\"sup1:1001\x01\"]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("Location", "http://sup1:1001/rest/m/depot/*d/append")
			h["Supervisor-Locations"] = []string{tt.header}
			d := &scriptedDoer{steps: []scriptStep{{status: http.StatusPermanentRedirect, header: h}}}
			c := newTestClient(t, d)

			_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
			require.ErrorIs(t, err, ErrInvalidSupervisorLocations)

			_, cached := c.Topology().Lookup("m")
			assert.False(t, cached)
		})
	}
}

func TestExecute_UnexpectedStatus(t *testing.T) {
	d := &scriptedDoer{steps: []scriptStep{{status: http.StatusInternalServerError, body: "boom"}}}
	c := newTestClient(t, d)

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.Code)
	assert.Equal(t, "http://conductor:8888/rest/m/depot/*d/append", serr.URL)
	assert.Equal(t, "boom", serr.Body)

	// No retry on 5xx: one request, zero redirects consumed.
	assert.Len(t, d.requests(), 1)
}

func TestExecute_TransportError(t *testing.T) {
	cause := errors.New("connection refused")
	d := &scriptedDoer{steps: []scriptStep{{err: cause}}}
	c := newTestClient(t, d)

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.ErrorIs(t, err, cause)
	assert.Len(t, d.requests(), 1)
}

func TestExecute_DecodeError(t *testing.T) {
	d := &scriptedDoer{steps: []scriptStep{ok(`not json at all`)}}
	c := newTestClient(t, d)

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.Len(t, d.requests(), 1)
}

func TestExecute_CachedTopologyCoverage(t *testing.T) {
	topo := topology.NewMap()
	topo.Update("m", []topology.Endpoint{
		{Host: "sup1", Port: 1001},
		{Host: "sup2", Port: 1002},
	})

	const trials = 20
	var steps []scriptStep
	for i := 0; i < trials; i++ {
		steps = append(steps, ok(`{}`))
	}
	d := &scriptedDoer{steps: steps}

	// Deterministic rotation stands in for the uniform source.
	var turn int
	c := newTestClient(t, d, func(o *ClientOptions) {
		o.Topology = topo
		o.IntN = func(n int) int {
			turn++
			return turn % n
		}
	})

	depot := c.Module("m").Depot("*d")
	for i := 0; i < trials; i++ {
		_, err := depot.Append(t.Context(), i)
		require.NoError(t, err)
	}

	hosts := make(map[string]int)
	for _, u := range d.requests() {
		hosts[u] = hosts[u] + 1
	}
	// Both cached supervisors served traffic, and nothing else was contacted.
	assert.Len(t, hosts, 2)
	assert.Positive(t, hosts["http://sup1:1001/rest/m/depot/*d/append"])
	assert.Positive(t, hosts["http://sup2:1002/rest/m/depot/*d/append"])
}

func TestExecute_EmptyTopologyUsesConductor(t *testing.T) {
	topo := topology.NewMap()
	topo.Update("m", []topology.Endpoint{{Host: "sup1", Port: 1001}})
	topo.Update("m", nil) // now empty, equivalent to absent

	d := &scriptedDoer{steps: []scriptStep{ok(`{}`)}}
	c := newTestClient(t, d, func(o *ClientOptions) {
		o.Topology = topo
	})

	_, err := c.Module("m").Depot("*d").Append(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://conductor:8888/rest/m/depot/*d/append"}, d.requests())
}
