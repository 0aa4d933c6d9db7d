package dispatch

import (
	"encoding/json"

	"github.com/jbeeko/contacts-worker/internal/errs"
)

// Response is a handler result: a status code and the body text.
type Response struct {
	Status int
	Body   string
}

// Text builds a Response from a status and a literal body.
func Text(status int, body string) Response {
	return Response{Status: status, Body: body}
}

// JSON marshals v as the response body.
func JSON(status int, v any) (Response, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: status, Body: string(raw)}, nil
}

// ErrorResponse renders an error envelope, using its Status as the status code.
func ErrorResponse(e *errs.HTTPError) Response {
	raw, err := json.Marshal(e)
	if err != nil {
		// Only strings and ints inside; unreachable in practice.
		return Response{Status: e.Status, Body: e.Message}
	}
	return Response{Status: e.Status, Body: string(raw)}
}
