package handler

import (
	"context"
	"time"

	"github.com/jbeeko/contacts-worker/internal/dispatch"
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// Handle wraps a dispatch handler with structured logging, timing and New
// Relic attributes. operation names the handler in logs and traces.
//
// Errors are logged, noticed on the transaction and returned unchanged so
// the global error handler renders them.
func Handle(h Handler, operation string, fn dispatch.HandlerFunc) dispatch.HandlerFunc {
	return func(ctx context.Context, req *dispatch.Request, params dispatch.Params) (dispatch.Response, error) {
		start := time.Now()

		txn := newrelic.FromContext(ctx)
		if txn != nil {
			txn.AddAttribute("handler.name", operation)
			for name, value := range params {
				txn.AddAttribute("handler.param."+name, value)
			}
		}

		logger := zerolog.Ctx(ctx).With().
			Str("operation", operation).
			Str("verb", req.Verb.String()).
			Logger()
		ctx = logger.WithContext(ctx)

		logger.Debug().Msg("handling request")

		resp, err := fn(ctx, req, params)
		duration := time.Since(start)

		if err != nil {
			logger.Error().
				Err(err).
				Dur("handler_duration", duration).
				Msg("handler execution failed")

			if txn != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
				txn.AddAttribute("handler.status", "error")
				txn.AddAttribute("handler.duration_ms", duration.Milliseconds())
			}
			return resp, err
		}

		if txn != nil {
			txn.AddAttribute("handler.status", "success")
			txn.AddAttribute("handler.duration_ms", duration.Milliseconds())
			txn.AddAttribute("handler.response_status", resp.Status)
		}

		logger.Info().
			Int("status", resp.Status).
			Dur("handler_duration", duration).
			Msg("request completed")

		return resp, nil
	}
}
