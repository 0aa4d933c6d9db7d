// Package validation contains the logic for validating
// decoded payloads and configuration.
//
// It uses the `validator` library to enforce rules (like
// required fields) defined in struct tags and extracts
// validation errors into a format the client can understand.
package validation
