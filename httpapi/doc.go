// Package httpapi is the thin HTTP boundary around the lending ledger.
//
// It owns everything the core deliberately does not: routing, request
// validation (6-digit path identifiers, payload shape), mapping typed
// failures onto HTTP statuses, and serializing responses. By the time a
// request reaches the store, identifiers and payloads are already valid.
//
// Transient store failures are retried here with bounded exponential
// backoff before surfacing as 503; business outcomes (404/409) are never
// retried.
package httpapi
