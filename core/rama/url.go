package rama

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tommy-mor/rama-go/core/topology"
)

// buildURL joins the conductor base, the fixed routing prefix, the module
// name and the operation suffix: {base}/rest/{module}/{suffix}.
func (c *Client) buildURL(module, suffix string) (*url.URL, error) {
	full := strings.TrimRight(c.base.String(), "/") +
		"/rest/" + strings.TrimLeft(module, "/") +
		"/" + strings.TrimLeft(suffix, "/")
	u, err := url.Parse(full)
	if err != nil {
		return nil, fmt.Errorf("rama: build url for module %q: %w", module, err)
	}
	return u, nil
}

// routeURL resolves the URL to actually contact: when a topology is cached
// for the module, one supervisor is picked uniformly at random and its
// host:port substituted into current (scheme, path and query untouched);
// otherwise current is used as-is.
func (c *Client) routeURL(current *url.URL, module string) *url.URL {
	eps, ok := c.topo.Lookup(module)
	if !ok || len(eps) == 0 {
		return current
	}
	u := *current
	u.Host = topology.Pick(eps, c.intn).Addr()
	return &u
}

// operationName labels a path suffix for metrics: the terminal segment,
// e.g. "depot/*words/append" -> "append".
func operationName(suffix string) string {
	if i := strings.LastIndexByte(suffix, '/'); i >= 0 {
		return suffix[i+1:]
	}
	return suffix
}
