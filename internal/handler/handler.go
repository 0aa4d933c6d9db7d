// Package handler is the first layer after the router.
//
// It adapts echo requests into dispatch requests, owns the contacts
// sub-router that maps (verb, segments) onto service operations, and
// serves the system endpoints (health, API docs).
package handler
