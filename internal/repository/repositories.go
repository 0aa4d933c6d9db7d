// Package repository handles all interactions with the key-value store.
//
// Repositories map resource operations onto kv.Store calls, wrap backend
// failures with context and log slow calls, keeping storage details away
// from the service layer.
package repository

import (
	"github.com/jbeeko/contacts-worker/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Contacts *ContactRepository
}

// NewRepositories constructs the repository container over the server's store.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Contacts: NewContactRepository(s.Store, s.Config.KV.ListLimit, s.Config.Observability.Logging.SlowQueryThreshold),
	}
}
