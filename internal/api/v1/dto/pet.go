package dto

import "time"

// PetCreateDTO is filled from the multipart form fields of a create request.
// The image file itself is read separately from the form.
type PetCreateDTO struct {
	Name   string   `json:"name" validate:"required"`
	Breed  string   `json:"breed" validate:"required"`
	City   string   `json:"city" validate:"required"`
	Bio    string   `json:"bio,omitempty" validate:"omitempty,max=300"`
	Skills []string `json:"skills,omitempty"`
}

// PetUpdateDTO carries only the fields present in the update form; nil means
// keep the stored value.
type PetUpdateDTO struct {
	Name   *string  `json:"name,omitempty"`
	Breed  *string  `json:"breed,omitempty"`
	City   *string  `json:"city,omitempty"`
	Bio    *string  `json:"bio,omitempty" validate:"omitempty,max=300"`
	Skills []string `json:"skills,omitempty"`
}

// PetOwnerDTO is the owner projection embedded in feed and profile responses.
type PetOwnerDTO struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// PetResponseDTO is returned in API responses for pet profiles.
type PetResponseDTO struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Name      string       `json:"name"`
	Breed     string       `json:"breed"`
	Skills    []string     `json:"skills"`
	City      string       `json:"city"`
	Bio       string       `json:"bio,omitempty"`
	ImageURL  *string      `json:"image_url,omitempty"`
	Likes     int          `json:"likes"`
	Owner     *PetOwnerDTO `json:"owner,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
