// Package http provides the request, response and transport layer used by
// httpspec to execute a spec.
//
// It wraps the standard library's http package with additional features:
//   - Request snapshots with replace-on-set header semantics
//   - Responses that keep every value of multi-value headers
//   - In-memory dispatch straight into an http.Handler
//   - Live dispatch through a configurable client (timeouts, redirects, proxy)
package http
