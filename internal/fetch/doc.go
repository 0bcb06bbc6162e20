// Package fetch provides the shared HTTP layer for source adapters: a
// per-client-class rate limiter and a retrying JSON client with bearer-token
// auth.
//
// Failures are returned as errors, never panics. A request that exhausts its
// retry budget yields the final error; callers treat the page as empty and
// keep going.
package fetch
