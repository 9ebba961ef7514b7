package handler

import (
	"context"
	"errors"

	"devhub/internal/domain"
	"devhub/internal/identity"
)

// In-memory domain.UserRepository for handler tests.
type fakeUserRepo struct {
	rows     map[string]*domain.User
	failWith error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if u, ok := f.rows[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.rows[u.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, id string, c domain.UserChanges) error {
	if f.failWith != nil {
		return f.failWith
	}
	u, ok := f.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.Username != nil {
		u.Username = *c.Username
	}
	if c.DisplayName != nil {
		u.DisplayName = *c.DisplayName
	}
	if c.AvatarURL != nil {
		u.AvatarURL = c.AvatarURL
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
	return nil
}

func (f *fakeUserRepo) Upsert(_ context.Context, u *domain.User, refreshRole bool) error {
	if f.failWith != nil {
		return f.failWith
	}
	if existing, ok := f.rows[u.ID]; ok {
		existing.Email = u.Email
		existing.Username = u.Username
		existing.DisplayName = u.DisplayName
		existing.AvatarURL = u.AvatarURL
		if refreshRole {
			existing.Role = u.Role
		}
		return nil
	}
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) ReassignID(_ context.Context, oldID, newID string) (*domain.User, error) {
	u, ok := f.rows[oldID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(f.rows, oldID)
	u.ID = newID
	f.rows[newID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ string, _, _ int) ([]domain.User, int64, error) {
	out := make([]domain.User, 0, len(f.rows))
	for _, u := range f.rows {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) AddPoints(_ context.Context, id string, delta int) (*domain.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Points += delta
	cp := *u
	return &cp, nil
}

func userRow(id string) *domain.User {
	return &domain.User{ID: id, Username: "u_" + id, DisplayName: "Anonymous", Role: domain.RoleMember}
}

// fakeProvider serves a canned profile, or fails.
type fakeProvider struct {
	profile *identity.Profile
	err     error
}

func (f *fakeProvider) Profile(_ context.Context, userID string) (*identity.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile != nil {
		return f.profile, nil
	}
	return nil, errors.New("no profile configured")
}
