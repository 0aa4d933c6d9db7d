package handler

import (
	"context"
	"time"

	"github.com/jbeeko/contacts-worker/internal/dispatch"
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/jbeeko/contacts-worker/internal/service"
)

// ContactHandler is the contacts sub-router. It receives the segments left
// after the mount prefix.
type ContactHandler struct {
	Handler
	contacts *service.ContactService
	table    *dispatch.Table
}

func NewContactHandler(s *server.Server, contacts *service.ContactService) *ContactHandler {
	h := &ContactHandler{
		Handler:  NewHandler(s),
		contacts: contacts,
	}

	h.table = dispatch.MustNew(h.noMatch,
		dispatch.Handle(dispatch.Only(dispatch.VerbGet), Handle(h.Handler, "contacts.read_one", h.readOne), dispatch.Param("id")),
		dispatch.Handle(dispatch.Only(dispatch.VerbGet), Handle(h.Handler, "contacts.read_all", h.readAll)),
		dispatch.Handle(dispatch.Only(dispatch.VerbPost), Handle(h.Handler, "contacts.create", h.create)),
		dispatch.Handle(dispatch.Only(dispatch.VerbPut), Handle(h.Handler, "contacts.update", h.update), dispatch.Param("id")),
		dispatch.Handle(dispatch.Only(dispatch.VerbDelete), Handle(h.Handler, "contacts.delete", h.delete), dispatch.Param("id")),
	)

	return h
}

// Dispatch implements dispatch.Dispatcher.
func (h *ContactHandler) Dispatch(ctx context.Context, verb dispatch.Verb, segments []string, req *dispatch.Request) (dispatch.Response, error) {
	return h.table.Dispatch(ctx, verb, segments, req)
}

// Routes lists the sub-router's routes in evaluation order.
func (h *ContactHandler) Routes() []dispatch.Route {
	return h.table.Routes()
}

func (h *ContactHandler) readOne(ctx context.Context, _ *dispatch.Request, p dispatch.Params) (dispatch.Response, error) {
	return h.contacts.ReadOne(ctx, p.Get("id"))
}

func (h *ContactHandler) readAll(ctx context.Context, req *dispatch.Request, _ dispatch.Params) (dispatch.Response, error) {
	return h.contacts.ReadAll(ctx, service.ListQuery{
		Prefix: req.Query.Get("prefix"),
		Cursor: req.Query.Get("cursor"),
	})
}

func (h *ContactHandler) create(ctx context.Context, req *dispatch.Request, _ dispatch.Params) (dispatch.Response, error) {
	opts, herr := service.ParseExpiry(req.Query, time.Now())
	if herr != nil {
		return dispatch.ErrorResponse(herr), nil
	}

	body, err := req.Text(ctx)
	if err != nil {
		return dispatch.Response{}, err
	}
	return h.contacts.Create(ctx, body, opts...)
}

func (h *ContactHandler) update(ctx context.Context, req *dispatch.Request, p dispatch.Params) (dispatch.Response, error) {
	opts, herr := service.ParseExpiry(req.Query, time.Now())
	if herr != nil {
		return dispatch.ErrorResponse(herr), nil
	}

	body, err := req.Text(ctx)
	if err != nil {
		return dispatch.Response{}, err
	}
	return h.contacts.Update(ctx, p.Get("id"), body, opts...)
}

func (h *ContactHandler) delete(ctx context.Context, _ *dispatch.Request, p dispatch.Params) (dispatch.Response, error) {
	return h.contacts.Delete(ctx, p.Get("id"))
}

func (h *ContactHandler) noMatch(context.Context, *dispatch.Request, dispatch.Params) (dispatch.Response, error) {
	return h.contacts.NoMatch(), nil
}
