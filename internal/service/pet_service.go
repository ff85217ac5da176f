package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petconnect/internal/model"
	"petconnect/internal/policy"
	"petconnect/internal/repository"
	"petconnect/internal/storage"
)

var (
	ErrPetNotFound   = errors.New("pet profile not found")
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrNotOwner is an authorization failure: the profile exists but the
	// caller does not own it. Never conflated with ErrPetNotFound.
	ErrNotOwner      = errors.New("you do not own this pet profile")
	ErrLimitReached  = errors.New("profile limit reached for your plan")
	ErrMissingFields = errors.New("name, breed, and city are required")
	ErrBioTooLong    = errors.New("bio exceeds maximum length")
	ErrImageUpload   = errors.New("image upload failed")
)

// ImageInput is an uploaded image ready to be stored.
type ImageInput struct {
	Reader      io.Reader
	ContentType string
}

// PetCreateInput carries the fields for a new pet profile.
type PetCreateInput struct {
	Name   string
	Breed  string
	City   string
	Bio    string
	Skills []string
	Image  *ImageInput
}

// PetService implements pet profile CRUD, the plan-gated feed, search and
// like counting. All plan and ownership decisions go through the policy
// package.
type PetService interface {
	Create(ctx context.Context, ownerID string, in PetCreateInput) (*model.PetProfile, error)
	Feed(ctx context.Context, callerID string, page, limit int) ([]model.PetProfile, error)
	Get(ctx context.Context, id string) (*model.PetProfile, error)
	Update(ctx context.Context, id, callerID string, upd model.PetUpdate, image *ImageInput) (*model.PetProfile, error)
	Delete(ctx context.Context, id, callerID string) error
	Search(ctx context.Context, breed, skill, city string) ([]model.PetProfile, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.PetProfile, error)
	Like(ctx context.Context, id string) (*model.PetProfile, error)
}

type petService struct {
	pets   repository.PetRepository
	users  repository.UserRepository
	images storage.ImageStore
	logger zerolog.Logger
}

// NewPetService creates a new PetService with a scoped logger.
func NewPetService(pets repository.PetRepository, users repository.UserRepository, images storage.ImageStore, logger zerolog.Logger) PetService {
	return &petService{
		pets:   pets,
		users:  users,
		images: images,
		logger: logger.With().Str("service", "PetService").Logger(),
	}
}

func (s *petService) uploadImage(ctx context.Context, petID string, img *ImageInput) (*string, error) {
	url, err := s.images.Upload(ctx, "pets/"+petID, img.Reader, img.ContentType)
	if err != nil {
		s.logger.Error().Err(err).Str("pet_id", petID).Msg("image upload failed")
		return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	return &url, nil
}

// Create validates first, then checks owner and plan ceiling, and only then
// uploads the image. A rejected request never leaves an orphaned upload
// behind.
//
// The count-then-create sequence is not transactional: two concurrent creates
// by the same owner near the ceiling can both pass the check. Best-effort
// semantics, accepted.
func (s *petService) Create(ctx context.Context, ownerID string, in PetCreateInput) (*model.PetProfile, error) {
	if in.Name == "" || in.Breed == "" || in.City == "" {
		return nil, ErrMissingFields
	}
	if len(in.Bio) > model.MaxBioLength {
		return nil, ErrBioTooLong
	}

	owner, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	count, err := s.pets.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !policy.CanCreateProfile(owner.Plan, count) {
		s.logger.Warn().Str("owner_id", ownerID).Str("plan", string(owner.Plan)).Msg("profile ceiling reached")
		return nil, ErrLimitReached
	}

	p := &model.PetProfile{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    in.Name,
		Breed:   in.Breed,
		Skills:  in.Skills,
		City:    in.City,
		Bio:     in.Bio,
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}

	if in.Image != nil {
		url, err := s.uploadImage(ctx, p.ID, in.Image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	if err := s.pets.CreatePet(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("pet_id", p.ID).Str("owner_id", ownerID).Msg("pet profile created")
	return p, nil
}

// Feed consults the policy engine with the caller's current stored plan, not
// the token snapshot, so an upgrade takes effect without re-login here.
func (s *petService) Feed(ctx context.Context, callerID string, page, limit int) ([]model.PetProfile, error) {
	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, ErrUserNotFound
	}

	decision := policy.FeedAccess(caller.Plan, page, limit)
	if decision.Kind == policy.FeedDenied {
		return nil, policy.ErrPlanForbidden
	}
	return s.pets.Feed(ctx, decision.Limit, decision.Offset)
}

func (s *petService) Get(ctx context.Context, id string) (*model.PetProfile, error) {
	p, err := s.pets.GetPetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPetNotFound
	}
	return p, nil
}

// Update applies only the supplied fields; nil fields keep their stored
// value. Ownership is strictly enforced.
func (s *petService) Update(ctx context.Context, id, callerID string, upd model.PetUpdate, image *ImageInput) (*model.PetProfile, error) {
	p, err := s.pets.GetPetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPetNotFound
	}
	if p.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Breed != nil {
		p.Breed = *upd.Breed
	}
	if upd.Skills != nil {
		p.Skills = upd.Skills
	}
	if upd.City != nil {
		p.City = *upd.City
	}
	if upd.Bio != nil {
		if len(*upd.Bio) > model.MaxBioLength {
			return nil, ErrBioTooLong
		}
		p.Bio = *upd.Bio
	}

	if image != nil {
		url, err := s.uploadImage(ctx, p.ID, image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	if err := s.pets.UpdatePet(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *petService) Delete(ctx context.Context, id, callerID string) error {
	p, err := s.pets.GetPetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPetNotFound
	}
	if p.OwnerID != callerID {
		return ErrNotOwner
	}
	return s.pets.DeletePet(ctx, id)
}

func (s *petService) Search(ctx context.Context, breed, skill, city string) ([]model.PetProfile, error) {
	return s.pets.Search(ctx, breed, skill, city)
}

func (s *petService) ListByOwner(ctx context.Context, ownerID string) ([]model.PetProfile, error) {
	return s.pets.ListByOwner(ctx, ownerID)
}

// Like increments unconditionally; repeat likes by the same caller are not
// de-duplicated.
func (s *petService) Like(ctx context.Context, id string) (*model.PetProfile, error) {
	p, err := s.pets.IncrementLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPetNotFound
	}
	return p, nil
}
