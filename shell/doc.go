// Package shell provides boundary-side helpers around the lending ledger core.
//
// The core itself never retries: concurrency conflicts are business outcomes
// and are reported, not resolved. Transient store failures (lock timeouts,
// connection failures) are a different matter - they are retryable by the
// caller, and this package provides the exponential backoff retry the HTTP
// boundary uses for exactly that class of failures.
package shell
