// Package dispatch routes a (verb, path) pair to a handler.
//
// A Table holds an ordered list of routes. Each route pairs a verb matcher
// with a sequence of segment matchers: literals, captures and a trailing
// rest marker that forwards the unconsumed segments to a nested Dispatcher.
// The first route that accepts the request wins; when none does, the
// table's fallback answers.
//
// Handlers never see transport types. They receive a *Request and return a
// Response descriptor (status + body text) that the hosting surface turns
// into a protocol response.
package dispatch
