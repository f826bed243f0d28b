// Package topology tracks which supervisors currently serve each module.
//
// The cluster advertises the serving topology through redirect responses:
// every 308 carries the full list of "host:port" supervisor addresses for
// the module being addressed. The routing client stores that list here and
// consults it before each request so follow-up traffic goes straight to a
// serving node instead of bouncing off the conductor.
//
// The cache is advisory. A stale or missing entry only costs an extra
// round trip (the cluster redirects again); it can never cause a request
// to be answered with wrong data. Entries are replaced wholesale on every
// redirect, and an empty list is indistinguishable from no entry at all.
//
// # Implementations
//
//   - [Map]: RWMutex-guarded map, unbounded, the default. Suitable for the
//     usual case of a client talking to a handful of modules for the
//     lifetime of the process.
//   - [LRU]: bounded variant owned by a background goroutine, for clients
//     that address many modules. Call Close when done.
//
// Both guarantee atomic full-list replacement: a concurrent reader sees
// either the previous list or the new one, never a mix.
package topology
