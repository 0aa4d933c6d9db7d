package handler

import (
	"context"
	"io"

	"github.com/jbeeko/contacts-worker/internal/dispatch"
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// DispatchHandler hosts a dispatch tree on echo: it turns the echo request
// into a dispatch.Request and writes the resulting Response as JSON.
type DispatchHandler struct {
	Handler
	root dispatch.Dispatcher
}

func NewDispatchHandler(s *server.Server, root dispatch.Dispatcher) *DispatchHandler {
	return &DispatchHandler{
		Handler: NewHandler(s),
		root:    root,
	}
}

// Serve is the echo handler for every path the dispatch tree owns.
func (h *DispatchHandler) Serve(c echo.Context) error {
	r := c.Request()

	req := dispatch.NewRequest(r.Method, r.URL.Path, r.Header, c.QueryParams(), func(context.Context) (string, error) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return "", errors.Wrap(err, "read request body")
		}
		return string(raw), nil
	})

	resp, err := dispatch.Serve(r.Context(), h.root, req)
	if err != nil {
		return err
	}

	return c.Blob(resp.Status, echo.MIMEApplicationJSON, []byte(resp.Body))
}
