package handler

import (
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/jbeeko/contacts-worker/internal/service"
)

// Handlers groups all HTTP handlers.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Contacts *ContactHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Contacts: NewContactHandler(s, services.Contacts),
	}
}
