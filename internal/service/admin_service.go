package service

import (
	"context"

	"github.com/rs/zerolog"

	"petconnect/internal/model"
	"petconnect/internal/policy"
	"petconnect/internal/repository"
)

// Dashboard is the admin view: every user plus every pet profile.
type Dashboard struct {
	Users []model.User       `json:"users"`
	Pets  []model.PetProfile `json:"pets"`
}

type AdminService interface {
	Dashboard(ctx context.Context, callerRole model.Role) (*Dashboard, error)
}

type adminService struct {
	users  repository.UserRepository
	pets   repository.PetRepository
	logger zerolog.Logger
}

func NewAdminService(users repository.UserRepository, pets repository.PetRepository, logger zerolog.Logger) AdminService {
	return &adminService{
		users:  users,
		pets:   pets,
		logger: logger.With().Str("service", "AdminService").Logger(),
	}
}

func (s *adminService) Dashboard(ctx context.Context, callerRole model.Role) (*Dashboard, error) {
	if err := policy.RoleGate(callerRole); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	pets, err := s.pets.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Users: users, Pets: pets}, nil
}
