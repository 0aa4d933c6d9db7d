// Package errs defines the error envelope returned to API clients.
//
// Every client-facing failure (unknown route, missing record, undecodable
// body, identity mismatch) is expressed as an *HTTPError so the response
// body always has the same JSON shape.
package errs
