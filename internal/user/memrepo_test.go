package user

import (
	"context"
	"sync"
)

// memRepo is an in-memory Repository for package tests.
type memRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func newMemRepo(users ...User) *memRepo {
	r := &memRepo{users: map[string]User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range r.users {
		if cur.Email == NormalizeEmail(u.Email) {
			return ErrAlreadyExist
		}
	}
	u.Email = NormalizeEmail(u.Email)
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == NormalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) List(_ context.Context, _, _ int) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, u *User, updatePassword bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if u.Email != "" {
		cur.Email = NormalizeEmail(u.Email)
	}
	if u.Role != "" {
		cur.Role = u.Role
	}
	if updatePassword {
		cur.PasswordHash = u.PasswordHash
	}
	r.users[u.ID] = cur
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}
