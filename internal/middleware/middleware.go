// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as
// request ids, the request-scoped logger, request logging, CORS, body
// limits, New Relic tracing and panic recovery, plus the error handler
// that renders every returned error as an errs.HTTPError envelope.
package middleware
