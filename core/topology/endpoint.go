package topology

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Endpoint is one physical node currently capable of serving a module.
// The wire form is "host:port", as advertised in Supervisor-Locations.
type Endpoint struct {
	Host string
	Port int
}

// Addr returns the "host:port" form of the endpoint.
func (e Endpoint) Addr() string { return net.JoinHostPort(e.Host, strconv.Itoa(e.Port)) }

func (e Endpoint) String() string { return e.Addr() }

// ParseEndpoint parses a "host:port" string.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrInvalidEndpoint, s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Endpoint{}, fmt.Errorf("%w: %q: bad port", ErrInvalidEndpoint, s)
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("%w: %q: empty host", ErrInvalidEndpoint, s)
	}
	return Endpoint{Host: host, Port: port}, nil
}

// ParseEndpoints parses a list of "host:port" strings. One malformed entry
// fails the whole list; callers must not proceed with partial topology.
func ParseEndpoints(addrs []string) ([]Endpoint, error) {
	eps := make([]Endpoint, 0, len(addrs))
	for _, a := range addrs {
		ep, err := ParseEndpoint(a)
		if err != nil {
			return nil, err
		}
		eps = append(eps, ep)
	}
	return eps, nil
}

// Pick selects one endpoint using intn, which must return a value in [0, n).
// Selection is uniform when intn is. eps must be non-empty.
func Pick(eps []Endpoint, intn func(n int) int) Endpoint {
	return eps[intn(len(eps))]
}
