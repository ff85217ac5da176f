package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petconnect/internal/model"
)

const petColumns = `p.id, p.owner_id, p.name, p.breed, p.skills, p.city, p.bio,
       p.image_url, p.likes, p.created_at, p.updated_at,
       u.name AS owner_name, u.email AS owner_email`

// PetRepository is the profile store. Every read joins the minimal owner
// projection (name, email) so listings never need a second round-trip.
type PetRepository interface {
	CreatePet(ctx context.Context, p *model.PetProfile) error
	GetPetByID(ctx context.Context, id string) (*model.PetProfile, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// Feed returns profiles ordered by likes descending, then creation time
	// descending (newer first on equal likes).
	Feed(ctx context.Context, limit, offset int) ([]model.PetProfile, error)
	UpdatePet(ctx context.Context, p *model.PetProfile) error
	DeletePet(ctx context.Context, id string) error
	Search(ctx context.Context, breed, skill, city string) ([]model.PetProfile, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.PetProfile, error)
	ListAll(ctx context.Context) ([]model.PetProfile, error)
	// IncrementLikes bumps the like counter by one in a single statement and
	// returns the updated row; concurrent calls never lose an increment.
	IncrementLikes(ctx context.Context, id string) (*model.PetProfile, error)
}

type petRepo struct {
	pool *pgxpool.Pool
}

// NewPetRepo creates a new PetRepository backed by postgres.
func NewPetRepo(pool *pgxpool.Pool) PetRepository {
	return &petRepo{pool: pool}
}

func scanPet(row pgx.Row) (*model.PetProfile, error) {
	var p model.PetProfile
	var owner model.OwnerSummary
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Breed, &p.Skills, &p.City, &p.Bio,
		&p.ImageURL, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
		&owner.Name, &owner.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	owner.ID = p.OwnerID
	p.Owner = &owner
	return &p, nil
}

func (r *petRepo) queryPets(ctx context.Context, q string, args ...any) ([]model.PetProfile, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pets := []model.PetProfile{}
	for rows.Next() {
		var p model.PetProfile
		var owner model.OwnerSummary
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Name, &p.Breed, &p.Skills, &p.City, &p.Bio,
			&p.ImageURL, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
			&owner.Name, &owner.Email,
		); err != nil {
			return nil, err
		}
		owner.ID = p.OwnerID
		p.Owner = &owner
		pets = append(pets, p)
	}
	return pets, rows.Err()
}

func (r *petRepo) CreatePet(ctx context.Context, p *model.PetProfile) error {
	const q = `
        INSERT INTO pet_profiles (id, owner_id, name, breed, skills, city, bio, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING likes, created_at, updated_at
    `
	err := r.pool.QueryRow(ctx, q,
		p.ID, p.OwnerID, p.Name, p.Breed, p.Skills, p.City, p.Bio, p.ImageURL,
	).Scan(&p.Likes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert pet profile: %w", err)
	}
	return nil
}

func (r *petRepo) GetPetByID(ctx context.Context, id string) (*model.PetProfile, error) {
	q := `SELECT ` + petColumns + ` FROM pet_profiles p JOIN users u ON u.id = p.owner_id WHERE p.id = $1`
	p, err := scanPet(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("fetch pet profile %s: %w", id, err)
	}
	return p, nil
}

func (r *petRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	const q = `SELECT COUNT(*) FROM pet_profiles WHERE owner_id = $1`
	if err := r.pool.QueryRow(ctx, q, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pet profiles for owner %s: %w", ownerID, err)
	}
	return count, nil
}

func (r *petRepo) Feed(ctx context.Context, limit, offset int) ([]model.PetProfile, error) {
	q := `
        SELECT ` + petColumns + `
        FROM pet_profiles p
        JOIN users u ON u.id = p.owner_id
        ORDER BY p.likes DESC, p.created_at DESC
        LIMIT $1 OFFSET $2
    `
	pets, err := r.queryPets(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return pets, nil
}

func (r *petRepo) UpdatePet(ctx context.Context, p *model.PetProfile) error {
	const q = `
        UPDATE pet_profiles
        SET name = $2, breed = $3, skills = $4, city = $5, bio = $6, image_url = $7, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Breed, p.Skills, p.City, p.Bio, p.ImageURL,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update pet profile %s: %w", p.ID, err)
	}
	return nil
}

func (r *petRepo) DeletePet(ctx context.Context, id string) error {
	const q = `DELETE FROM pet_profiles WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("delete pet profile %s: %w", id, err)
	}
	return nil
}

func (r *petRepo) Search(ctx context.Context, breed, skill, city string) ([]model.PetProfile, error) {
	// Filters combine with AND; each is a case-insensitive substring match.
	// A skill filter matches when any one element of the skills array matches.
	q := `
        SELECT ` + petColumns + `
        FROM pet_profiles p
        JOIN users u ON u.id = p.owner_id
        WHERE ($1 = '' OR p.breed ILIKE '%' || $1 || '%')
          AND ($2 = '' OR EXISTS (SELECT 1 FROM unnest(p.skills) AS s WHERE s ILIKE '%' || $2 || '%'))
          AND ($3 = '' OR p.city ILIKE '%' || $3 || '%')
        ORDER BY p.created_at DESC
    `
	pets, err := r.queryPets(ctx, q, breed, skill, city)
	if err != nil {
		return nil, fmt.Errorf("search pet profiles: %w", err)
	}
	return pets, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.PetProfile, error) {
	q := `
        SELECT ` + petColumns + `
        FROM pet_profiles p
        JOIN users u ON u.id = p.owner_id
        WHERE p.owner_id = $1
        ORDER BY p.created_at DESC
    `
	pets, err := r.queryPets(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list pet profiles for owner %s: %w", ownerID, err)
	}
	return pets, nil
}

func (r *petRepo) ListAll(ctx context.Context) ([]model.PetProfile, error) {
	q := `
        SELECT ` + petColumns + `
        FROM pet_profiles p
        JOIN users u ON u.id = p.owner_id
        ORDER BY p.created_at DESC
    `
	pets, err := r.queryPets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list all pet profiles: %w", err)
	}
	return pets, nil
}

func (r *petRepo) IncrementLikes(ctx context.Context, id string) (*model.PetProfile, error) {
	const q = `
        UPDATE pet_profiles
        SET likes = likes + 1, updated_at = NOW()
        WHERE id = $1
        RETURNING id, owner_id, name, breed, skills, city, bio, image_url, likes, created_at, updated_at
    `
	var p model.PetProfile
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Breed, &p.Skills, &p.City, &p.Bio,
		&p.ImageURL, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("increment likes for pet profile %s: %w", id, err)
	}
	return &p, nil
}
