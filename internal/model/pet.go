package model

import "time"

// MaxBioLength bounds the optional pet bio.
const MaxBioLength = 300

// PetProfile represents a pet profile owned by exactly one user.
type PetProfile struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Breed     string    `db:"breed" json:"breed"`
	Skills    []string  `db:"skills" json:"skills"`
	City      string    `db:"city" json:"city"`
	Bio       string    `db:"bio" json:"bio,omitempty"`
	ImageURL  *string   `db:"image_url" json:"image_url,omitempty"`
	Likes     int       `db:"likes" json:"likes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Owner is a denormalized projection of the owning user, populated by
	// listing queries. It is not an embedded copy of the user record.
	Owner *OwnerSummary `json:"owner,omitempty"`
}

// OwnerSummary is the minimal owner projection attached to listed profiles.
type OwnerSummary struct {
	ID    string  `db:"owner_id" json:"id"`
	Name  string  `db:"owner_name" json:"name"`
	Email *string `db:"owner_email" json:"email,omitempty"`
}

// PetUpdate carries a partial update: nil fields are left unchanged.
type PetUpdate struct {
	Name   *string
	Breed  *string
	Skills []string
	City   *string
	Bio    *string
}
