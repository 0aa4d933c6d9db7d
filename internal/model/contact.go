// Package model holds the contact record and its JSON codec.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jbeeko/contacts-worker/internal/errs"
	"github.com/jbeeko/contacts-worker/internal/validation"
)

// Contact is the stored resource. ID doubles as the storage key.
type Contact struct {
	ID          string
	FirstName   string
	FamilyName  string
	DateOfBirth string
	Email       string
}

// DisplayName joins the trimmed first and family names. It is derived and
// never stored.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.FamilyName)
}

// contactWire is the external JSON shape. The field names (including the
// "FamillyName" spelling) are part of the public contract. Pointers let the
// validator tell a missing field from an empty string.
type contactWire struct {
	ID          *string `json:"id" validate:"required"`
	FirstName   *string `json:"FirstName" validate:"required"`
	FamilyName  *string `json:"FamillyName" validate:"required"`
	DateOfBirth *string `json:"DOB" validate:"required"`
	Email       *string `json:"EMail" validate:"required"`
}

func (w *contactWire) Validate() error {
	return validation.Struct(w)
}

// DecodeError reports a body that is not a structurally valid contact.
type DecodeError struct {
	Message string
	Fields  []errs.FieldError
	err     error
}

func (e *DecodeError) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.err
}

// DecodeContact parses text into a Contact. Only structure is checked: every
// field must be present and be a JSON string. Empty strings, odd dates and
// malformed emails are accepted. Unknown fields are ignored.
func DecodeContact(text string) (Contact, error) {
	var w contactWire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Contact{}, decodeFailure(err)
	}

	if msg, fields := validation.Check(&w); fields != nil {
		return Contact{}, &DecodeError{Message: msg, Fields: fields}
	}

	return Contact{
		ID:          *w.ID,
		FirstName:   *w.FirstName,
		FamilyName:  *w.FamilyName,
		DateOfBirth: *w.DateOfBirth,
		Email:       *w.Email,
	}, nil
}

func decodeFailure(err error) *DecodeError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return &DecodeError{Message: "body must be a JSON object", err: err}
		}
		return &DecodeError{
			Message: "Validation failed",
			Fields: []errs.FieldError{{
				Field: typeErr.Field,
				Error: fmt.Sprintf("must be a string, got %s", typeErr.Value),
			}},
			err: err,
		}
	}

	return &DecodeError{Message: "malformed JSON", err: err}
}

// EncodeContact renders the canonical JSON form of c. For any c,
// DecodeContact(EncodeContact(c)) returns c.
func EncodeContact(c Contact) string {
	w := contactWire{
		ID:          &c.ID,
		FirstName:   &c.FirstName,
		FamilyName:  &c.FamilyName,
		DateOfBirth: &c.DateOfBirth,
		Email:       &c.Email,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings cannot fail.
	_ = enc.Encode(w)

	return strings.TrimSuffix(buf.String(), "\n")
}
