package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"petconnect/internal/model"
)

// In-memory fakes for the credential and profile stores.

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByPhone(_ context.Context, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone != nil && *u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) DowngradeToFree(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.Plan = model.PlanFree
	u.PlanStart = nil
	u.PlanEnd = nil
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) SetResetToken(_ context.Context, id, tok string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.ResetToken = &tok
	u.ResetTokenExpires = &expires
	return nil
}

func (m *mockUserRepo) GetUserByResetToken(_ context.Context, tok string, now time.Time) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == tok &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) ResetPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	return nil
}

func (m *mockUserRepo) ListUsers(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

type mockPetRepo struct {
	mu   sync.Mutex
	pets map[string]*model.PetProfile
}

func newMockPetRepo() *mockPetRepo {
	return &mockPetRepo{pets: map[string]*model.PetProfile{}}
}

func (m *mockPetRepo) CreatePet(_ context.Context, p *model.PetProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.pets[p.ID] = &cp
	return nil
}

func (m *mockPetRepo) GetPetByID(_ context.Context, id string) (*model.PetProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pets[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *mockPetRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.pets {
		if p.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *mockPetRepo) sortedAll() []model.PetProfile {
	out := []model.PetProfile{}
	for _, p := range m.pets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *mockPetRepo) Feed(_ context.Context, limit, offset int) ([]model.PetProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sortedAll()
	if offset >= len(all) {
		return []model.PetProfile{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockPetRepo) UpdatePet(_ context.Context, p *model.PetProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pets[p.ID]; !ok {
		return errors.New("no such pet")
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.pets[p.ID] = &cp
	return nil
}

func (m *mockPetRepo) DeletePet(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pets, id)
	return nil
}

func (m *mockPetRepo) Search(_ context.Context, breed, skill, city string) ([]model.PetProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.PetProfile{}
	for _, p := range m.pets {
		if breed != "" && !containsFold(p.Breed, breed) {
			continue
		}
		if city != "" && !containsFold(p.City, city) {
			continue
		}
		if skill != "" {
			matched := false
			for _, s := range p.Skills {
				if containsFold(s, skill) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPetRepo) ListByOwner(_ context.Context, ownerID string) ([]model.PetProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.PetProfile{}
	for _, p := range m.pets {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockPetRepo) ListAll(_ context.Context) ([]model.PetProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.PetProfile{}
	for _, p := range m.pets {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPetRepo) IncrementLikes(_ context.Context, id string) (*model.PetProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pets[id]
	if !ok {
		return nil, nil
	}
	p.Likes++
	cp := *p
	return &cp, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type mockImageStore struct {
	mu      sync.Mutex
	uploads []string
	fail    bool
}

func (m *mockImageStore) Upload(_ context.Context, key string, _ io.Reader, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	m.uploads = append(m.uploads, key)
	return "https://img.test/" + key, nil
}
