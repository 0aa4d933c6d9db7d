package service

import (
	"github.com/jbeeko/contacts-worker/internal/lib/job"
	"github.com/jbeeko/contacts-worker/internal/repository"
	"github.com/jbeeko/contacts-worker/internal/server"
)

type Services struct {
	Contacts *ContactService
	Job      *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Contacts: NewContactService(repos.Contacts, s.Config.Contacts),
		Job:      s.Job,
	}, nil
}
