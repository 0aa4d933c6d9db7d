package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jbeeko/contacts-worker/internal/config"
	"github.com/jbeeko/contacts-worker/internal/dispatch"
	"github.com/jbeeko/contacts-worker/internal/errs"
	"github.com/jbeeko/contacts-worker/internal/kv"
	"github.com/jbeeko/contacts-worker/internal/model"
	"github.com/jbeeko/contacts-worker/internal/repository"
	"github.com/rs/zerolog"
)

// ContactService implements the contacts CRUD operations.
//
// There is no locking between the read and the write of Update and Delete;
// a concurrent writer can slip in between and the last write wins.
type ContactService struct {
	repo *repository.ContactRepository

	// createFailureStatus is the status of an undecodable create body.
	createFailureStatus int
	strictUpdate        bool
	defaultTTL          time.Duration
}

func NewContactService(repo *repository.ContactRepository, cfg config.ContactsConfig) *ContactService {
	status := http.StatusOK
	if cfg.StrictCreateStatus {
		status = http.StatusBadRequest
	}

	return &ContactService{
		repo:                repo,
		createFailureStatus: status,
		strictUpdate:        cfg.StrictUpdateIdentity,
		defaultTTL:          cfg.DefaultTTL,
	}
}

// ListQuery narrows ReadAll.
type ListQuery struct {
	Prefix string
	Cursor string
}

// ListBody is the ReadAll response body. Only key names are listed.
type ListBody struct {
	Keys         []string `json:"keys"`
	ListComplete bool     `json:"list_complete"`
	Cursor       string   `json:"cursor"`
}

// ReadOne returns the stored text for id verbatim.
func (s *ContactService) ReadOne(ctx context.Context, id string) (dispatch.Response, error) {
	text, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return dispatch.Response{}, err
	}
	if !ok {
		return notFound(id), nil
	}
	return dispatch.Text(http.StatusOK, text), nil
}

// ReadAll lists one page of ids. The cursor is surfaced but never followed.
func (s *ContactService) ReadAll(ctx context.Context, q ListQuery) (dispatch.Response, error) {
	page, err := s.repo.List(ctx, q.Prefix, q.Cursor)
	if errors.Is(err, kv.ErrInvalidCursor) {
		return dispatch.ErrorResponse(errs.NewBadRequestError("invalid cursor", false, nil, nil)), nil
	}
	if err != nil {
		return dispatch.Response{}, err
	}

	return dispatch.JSON(http.StatusOK, ListBody{
		Keys:         page.Names(),
		ListComplete: page.Complete,
		Cursor:       page.Cursor,
	})
}

// Create stores body under its own id, overwriting any existing record.
// opts carry the expiry of the write; without them the default TTL applies.
//
// An undecodable body is answered with createFailureStatus, which is 200
// unless strict create status is configured.
func (s *ContactService) Create(ctx context.Context, body string, opts ...kv.PutOption) (dispatch.Response, error) {
	contact, err := model.DecodeContact(body)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Msg("rejected contact body on create")
		return invalidContact(s.createFailureStatus, err), nil
	}

	// Paths are lower-cased before matching, so such an id is only reachable
	// through a listing.
	if dispatch.Lower(contact.ID) != contact.ID {
		zerolog.Ctx(ctx).Warn().
			Str("contact_id", contact.ID).
			Msg("contact id is not lower-case and cannot be addressed by path")
	}

	if err := s.repo.Put(ctx, contact.ID, body, s.putOptions(opts)...); err != nil {
		return dispatch.Response{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("contact_id", contact.ID).
		Str("display_name", contact.DisplayName()).
		Msg("contact stored")

	return dispatch.Text(http.StatusOK, body), nil
}

// Update replaces the record stored under id with body. The previous
// expiry is not carried over; opts and the default TTL decide the new one.
//
// Both the stored text and body must decode, and the stored record's id
// must equal id. The id inside body is only compared when strict update
// identity is configured.
func (s *ContactService) Update(ctx context.Context, id, body string, opts ...kv.PutOption) (dispatch.Response, error) {
	stored, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return dispatch.Response{}, err
	}
	if !ok {
		return notFound(id), nil
	}

	existing, err := model.DecodeContact(stored)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("contact_id", id).Msg("stored contact does not decode")
		return dispatch.ErrorResponse(errs.NewBadRequestError("stored contact is invalid: "+err.Error(), false, nil, nil)), nil
	}

	incoming, err := model.DecodeContact(body)
	if err != nil {
		return invalidContact(http.StatusBadRequest, err), nil
	}

	if existing.ID != id {
		return dispatch.ErrorResponse(errs.NewIdentityMismatchError(id, existing.ID)), nil
	}
	if s.strictUpdate && incoming.ID != id {
		return dispatch.ErrorResponse(errs.NewIdentityMismatchError(id, incoming.ID)), nil
	}

	if err := s.repo.Put(ctx, id, body, s.putOptions(opts)...); err != nil {
		return dispatch.Response{}, err
	}

	return dispatch.Text(http.StatusOK, body), nil
}

// Delete removes id and answers with the text it held.
func (s *ContactService) Delete(ctx context.Context, id string) (dispatch.Response, error) {
	stored, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return dispatch.Response{}, err
	}
	if !ok {
		return notFound(id), nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return dispatch.Response{}, err
	}

	return dispatch.Text(http.StatusOK, stored), nil
}

// NoMatch is the fixed answer for requests no contacts route accepts.
func (s *ContactService) NoMatch() dispatch.Response {
	return dispatch.ErrorResponse(errs.NewNoHandlerError())
}

func (s *ContactService) putOptions(opts []kv.PutOption) []kv.PutOption {
	if len(opts) == 0 && s.defaultTTL > 0 {
		return []kv.PutOption{kv.WithTTL(s.defaultTTL)}
	}
	return opts
}

func notFound(id string) dispatch.Response {
	return dispatch.ErrorResponse(errs.NewNotFoundError("contact "+id+" not found", false, nil))
}

func invalidContact(status int, err error) dispatch.Response {
	var de *model.DecodeError
	if errors.As(err, &de) {
		return dispatch.ErrorResponse(errs.NewInvalidContactError(status, de.Error(), de.Fields))
	}
	return dispatch.ErrorResponse(errs.NewInvalidContactError(status, err.Error(), nil))
}
