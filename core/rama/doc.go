// Package rama is an HTTP client for Rama clusters.
//
// A Rama cluster exposes modules over a REST API. Each module owns depots
// (append-only ingestion) and PStates (queryable partitioned state), and any
// of them may be served by any supervisor node at any time. Clients never
// need to know which node that is: they send requests to the conductor's
// well-known address, and the cluster answers with a 308 redirect carrying
// both the correct location and the module's full serving topology. This
// package follows those redirects, remembers the advertised topology per
// module, and spreads subsequent requests uniformly across the cached
// supervisors.
//
// # Usage
//
// Create a client against the conductor and scope it down to a module:
//
//	client, err := rama.NewClient(rama.ClientOptions{
//	    ConductorURL: "http://localhost:8888",
//	})
//	if err != nil { ... }
//
//	mod := client.Module("com.example/wordcount")
//
// Append to a depot:
//
//	acks, err := mod.Depot("*words-depot").Append(ctx, "hello",
//	    rama.WithAckLevel(rama.AckLevelAppendAck))
//
// Query a PState by building a path and executing it:
//
//	counts := mod.PState("$$word-counts")
//	n, err := rama.SelectOne[int64](ctx, counts, rama.NewPath().Key("hello"))
//
// Paths are ordered sequences of navigators. Implicit navigators are plain
// values ([Path.Key], [Path.Nav]); explicit navigators encode as
// ["opName", args...] ([Path.All], [Path.Must], [Path.FilterSelected], ...).
// Typed scalars that JSON cannot represent exactly travel as tagged strings
// produced by [Long], [Short], [Byte], [Float], [Char], [Keyword] and
// [Function].
//
// # Routing
//
// Every operation POSTs to {conductor}/rest/{module}/{suffix}. A 308
// response means the module lives elsewhere: the client records the
// Supervisor-Locations header (a JSON array of "host:port" strings) in its
// topology cache, retries against the Location header, and keeps following
// until it gets a terminal answer or exhausts its redirect budget
// ([DefaultMaxRedirects]). Once a topology is cached, requests go directly
// to a uniformly random supervisor from the list; the conductor is only
// contacted again when the cluster redirects anew.
//
// There is no retry on 5xx and no failover to another cached supervisor on
// failure; errors are surfaced to the caller.
//
// # Errors
//
// Failures are distinct and inspectable: transport errors wrap the
// underlying cause, unexpected statuses surface as [*StatusError], and
// malformed redirects surface as [ErrMissingLocation],
// [ErrInvalidLocation], [ErrMissingSupervisorLocations] or
// [ErrInvalidSupervisorLocations]. A redirect whose headers do not parse
// aborts the operation without touching the topology cache.
package rama
