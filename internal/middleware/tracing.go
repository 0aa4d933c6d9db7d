package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/jbeeko/contacts-worker/internal/dispatch"
	"github.com/jbeeko/contacts-worker/internal/server"
)

// TracingMiddleware owns New Relic related Echo middleware. nrApp is nil
// when New Relic is disabled.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
	mount  []string
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
		mount:  dispatch.Segments(s.Config.Contacts.MountPath),
	}
}

// NewRelicMiddleware starts a transaction per request, or passes through
// when New Relic is disabled.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds request attributes to the transaction and notices
// returned errors. It must run after NewRelicMiddleware.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			// nrecho names every dispatched request after the "/*" catch-all.
			if c.Path() == "/*" {
				txn.SetName(tm.transactionName(c.Request().Method, c.Request().URL.Path))
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())
			txn.AddAttribute("kv.backend", tm.server.Config.KV.Backend)

			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}

// transactionName groups dispatched requests: contacts requests by verb and
// whether they address a single id, everything else under one name.
func (tm *TracingMiddleware) transactionName(method, path string) string {
	verb := dispatch.ParseVerb(method).String()
	segments := dispatch.Segments(path)

	if len(segments) < len(tm.mount) {
		return verb + " (unrouted)"
	}
	for i, seg := range tm.mount {
		if segments[i] != seg {
			return verb + " (unrouted)"
		}
	}

	name := verb + " /" + strings.Join(tm.mount, "/")
	switch len(segments) - len(tm.mount) {
	case 0:
		return name
	case 1:
		return name + "/{id}"
	default:
		return verb + " (unrouted)"
	}
}
