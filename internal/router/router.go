// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares, the system routes and the dispatch tree
// that owns every other path.
package router

import (
	"github.com/jbeeko/contacts-worker/internal/dispatch"
	"github.com/jbeeko/contacts-worker/internal/handler"
	"github.com/jbeeko/contacts-worker/internal/middleware"
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance.
//
// Middleware order matters: the request id comes first so the tracing and
// context logger can read it, and the request logger runs inside them so
// its line carries the enriched logger.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)

	root := NewDispatchTable(s, h)
	dispatchHandler := handler.NewDispatchHandler(s, root)

	// Static system routes win over the wildcard in echo's router, so the
	// dispatch tree sees every other path.
	router.Any("/*", dispatchHandler.Serve)
	router.RouteNotFound("/*", dispatchHandler.Serve)

	return router
}

// NewDispatchTable builds the top-level route table: the contacts
// sub-router under contacts.mount_path. Anything else gets the fixed
// "no handler" answer.
func NewDispatchTable(s *server.Server, h *handler.Handlers) *dispatch.Table {
	var prefix []dispatch.Segment
	for _, seg := range dispatch.Segments(s.Config.Contacts.MountPath) {
		prefix = append(prefix, dispatch.Lit(seg))
	}

	return dispatch.MustNew(nil,
		dispatch.Mount(dispatch.AnyVerb(), h.Contacts, prefix...),
	)
}
