package rama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/tommy-mor/rama-go/core/topology"
)

// maxErrorBodyBytes caps how much of a failure response body is kept for
// diagnostics.
const maxErrorBodyBytes = 4 << 10

// execute runs one routed operation: resolve a target, POST the body, follow
// bounded 308 redirects while refreshing the topology cache, and decode a
// 200 response into out. Each call owns its attempt counter and target URL;
// concurrent calls share only the topology cache.
func (c *Client) execute(ctx context.Context, module, suffix string, body any, out any) error {
	current, err := c.buildURL(module, suffix)
	if err != nil {
		return err
	}

	data, err := c.codec.Marshal(body)
	if err != nil {
		return fmt.Errorf("rama: encode request body: %w", err)
	}

	op := operationName(suffix)
	log := c.log.With(
		slog.String("request", gonanoid.Must(8)),
		slog.String("module", module),
		slog.String("op", op),
	)

	defer c.metrics.RequestDuration(op).ObserveDuration()

	attempts := 0
	for {
		if attempts >= c.maxRedirects {
			log.Error("redirect budget exhausted", slog.Int("max_redirects", c.maxRedirects))
			c.metrics.RequestCompleted(op, false)
			return fmt.Errorf("%w (max %d)", ErrMaxRedirects, c.maxRedirects)
		}
		attempts++

		target := c.routeURL(current, module)
		log.Debug("sending request", slog.Int("attempt", attempts), slog.String("url", target.String()))

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(data))
		if err != nil {
			c.metrics.RequestCompleted(op, false)
			return fmt.Errorf("rama: build request for %s: %w", target, err)
		}
		req.Header.Set("Content-Type", "text/plain")

		resp, err := c.http.Do(req)
		if err != nil {
			log.Error("request failed", slog.String("url", target.String()), slog.Any("error", err))
			c.metrics.TransportError("send")
			c.metrics.RequestCompleted(op, false)
			return fmt.Errorf("rama: request to %s failed: %w", target, err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			if err := c.decodeBody(resp, out); err != nil {
				log.Error("decode failed", slog.String("url", target.String()), slog.Any("error", err))
				c.metrics.TransportError("decode")
				c.metrics.RequestCompleted(op, false)
				return fmt.Errorf("rama: decode response from %s: %w", target, err)
			}
			c.metrics.RequestCompleted(op, true)
			return nil

		case http.StatusPermanentRedirect:
			next, eps, err := parseRedirect(resp)
			if err != nil {
				log.Warn("unusable redirect", slog.String("url", target.String()), slog.Any("error", err))
				c.metrics.RequestCompleted(op, false)
				return err
			}
			// Both headers parsed; only now may the cache change.
			c.topo.Update(module, eps)
			c.metrics.RedirectFollowed(module)
			c.metrics.TopologyRefreshed(module, len(eps))
			log.Debug("following redirect",
				slog.String("location", next.String()),
				slog.Int("supervisors", len(eps)),
			)
			current = next

		default:
			// TODO: failover to another cached supervisor on 5xx.
			serr := &StatusError{
				Code: resp.StatusCode,
				URL:  target.String(),
				Body: readErrorBody(resp),
			}
			log.Error("unexpected status",
				slog.Int("status", serr.Code),
				slog.String("url", serr.URL),
			)
			c.metrics.RequestCompleted(op, false)
			return serr
		}
	}
}

// decodeBody reads and closes the response body, decoding it into out.
func (c *Client) decodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return c.codec.Unmarshal(data, out)
}

// parseRedirect extracts the new location and the advertised topology from a
// 308 response. Both must be present and well formed; a redirect the client
// cannot fully understand is an error, never a guess.
func parseRedirect(resp *http.Response) (*url.URL, []topology.Endpoint, error) {
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()
	}()

	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, nil, ErrMissingLocation
	}
	next, err := url.Parse(loc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q: %v", ErrInvalidLocation, loc, err)
	}
	if next.Scheme == "" || next.Host == "" {
		return nil, nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidLocation, loc)
	}

	raw := resp.Header.Get("Supervisor-Locations")
	if raw == "" {
		return nil, nil, ErrMissingSupervisorLocations
	}
	var addrs []string
	if err := json.Unmarshal([]byte(raw), &addrs); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSupervisorLocations, err)
	}
	eps, err := topology.ParseEndpoints(addrs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSupervisorLocations, err)
	}

	return next, eps, nil
}

// readErrorBody drains a best-effort snippet of a failure response.
func readErrorBody(resp *http.Response) string {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return string(data)
}
