// Package service contains the business logic.
//
// It sits between the handler and repository layers: each operation
// composes the contact codec with repository calls and produces a
// dispatch.Response. Client mistakes become error envelopes here; backend
// failures are returned as errors for the hosting layer to render.
package service
