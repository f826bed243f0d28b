package rama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// TestCluster is an in-process stand-in for a Rama cluster: one conductor
// that answers every request with a 308 carrying the current supervisor
// topology, plus the supervisors themselves serving h over real HTTP.
type TestCluster struct {
	Conductor   *httptest.Server
	Supervisors []*httptest.Server

	conductorHits  atomic.Int64
	supervisorHits []*atomic.Int64
}

// CreateTestCluster starts a conductor and numSupervisors supervisor servers,
// all torn down with the test. Every conductor request redirects to the first
// supervisor and advertises all of them.
func CreateTestCluster(t *testing.T, numSupervisors int, h http.Handler) *TestCluster {
	t.Helper()

	tc := &TestCluster{}
	for i := 0; i < numSupervisors; i++ {
		hits := &atomic.Int64{}
		tc.supervisorHits = append(tc.supervisorHits, hits)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			h.ServeHTTP(w, r)
		}))
		t.Cleanup(srv.Close)
		tc.Supervisors = append(tc.Supervisors, srv)
	}

	tc.Conductor = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc.conductorHits.Add(1)
		locs, _ := json.Marshal(tc.SupervisorAddrs())
		w.Header().Set("Location", tc.Supervisors[0].URL+r.URL.Path)
		w.Header().Set("Supervisor-Locations", string(locs))
		w.WriteHeader(http.StatusPermanentRedirect)
	}))
	t.Cleanup(tc.Conductor.Close)

	return tc
}

// SupervisorAddrs returns the "host:port" list the conductor advertises.
func (tc *TestCluster) SupervisorAddrs() []string {
	addrs := make([]string, 0, len(tc.Supervisors))
	for _, s := range tc.Supervisors {
		addrs = append(addrs, strings.TrimPrefix(s.URL, "http://"))
	}
	return addrs
}

// ConductorHits reports how many requests reached the conductor.
func (tc *TestCluster) ConductorHits() int64 { return tc.conductorHits.Load() }

// SupervisorHits reports how many requests reached supervisor i.
func (tc *TestCluster) SupervisorHits(i int) int64 { return tc.supervisorHits[i].Load() }
