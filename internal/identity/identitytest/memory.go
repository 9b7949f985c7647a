// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package identitytest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/purerosefallen/YuzuDice/internal/identity"
)

type profileKey struct {
	userID  string
	groupID string
}

// Memory is an in-memory backing for all three identity repositories.
// Records are copied on the way in and out, like rows in a database.
type Memory struct {
	mu       sync.Mutex
	users    map[string]identity.User
	groups   map[string]identity.Group
	profiles map[profileKey]identity.GroupUserProfile
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]identity.User),
		groups:   make(map[string]identity.Group),
		profiles: make(map[profileKey]identity.GroupUserProfile),
	}
}

// Users returns the user repository view.
func (m *Memory) Users() identity.UserRepository { return memoryUsers{m} }

// Groups returns the group repository view.
func (m *Memory) Groups() identity.GroupRepository { return memoryGroups{m} }

// Profiles returns the profile repository view.
func (m *Memory) Profiles() identity.ProfileRepository { return memoryProfiles{m} }

// PutUser stores u directly.
func (m *Memory) PutUser(u identity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// PutGroup stores g directly.
func (m *Memory) PutGroup(g identity.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[g.ID] = g
}

// PutProfile stores p directly.
func (m *Memory) PutProfile(p identity.GroupUserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profileKey{p.UserID, p.GroupID}] = p
}

// User returns the stored user with id.
func (m *Memory) User(id string) (identity.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

// Group returns the stored group with id.
func (m *Memory) Group(id string) (identity.Group, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	return g, ok
}

// Profile returns the stored profile for (userID, groupID).
func (m *Memory) Profile(userID, groupID string) (identity.GroupUserProfile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profileKey{userID, groupID}]
	return p, ok
}

type memoryUsers struct{ m *Memory }

func (r memoryUsers) FindOrCreate(_ context.Context, defaults *identity.User) (*identity.User, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if u, ok := r.m.users[defaults.ID]; ok {
		return &u, false, nil
	}
	r.m.users[defaults.ID] = *defaults
	u := *defaults
	return &u, true, nil
}

func (r memoryUsers) Update(_ context.Context, user *identity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return identity.ErrNotFound
	}
	r.m.users[user.ID] = *user
	return nil
}

func (r memoryUsers) List(_ context.Context, filter identity.UserFilter) ([]*identity.User, error) {
	return r.collect(func(u identity.User) bool {
		return (filter.ID == "" || u.ID == filter.ID) && (filter.Name == "" || u.Name == filter.Name)
	}), nil
}

func (r memoryUsers) FindByIDOrName(_ context.Context, field string) ([]*identity.User, error) {
	return r.collect(func(u identity.User) bool { return u.ID == field || u.Name == field }), nil
}

func (r memoryUsers) collect(match func(identity.User) bool) []*identity.User {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*identity.User
	for _, u := range r.m.users {
		if match(u) {
			out = append(out, &u)
		}
	}
	slices.SortFunc(out, func(a, b *identity.User) int { return strings.Compare(a.ID, b.ID) })
	return out
}

type memoryGroups struct{ m *Memory }

func (r memoryGroups) FindOrCreate(_ context.Context, id string) (*identity.Group, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if g, ok := r.m.groups[id]; ok {
		return &g, false, nil
	}
	g := identity.Group{ID: id}
	r.m.groups[id] = g
	return &g, true, nil
}

func (r memoryGroups) Update(_ context.Context, group *identity.Group) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.groups[group.ID]; !ok {
		return identity.ErrNotFound
	}
	r.m.groups[group.ID] = *group
	return nil
}

type memoryProfiles struct{ m *Memory }

func (r memoryProfiles) FindOrCreate(_ context.Context, defaults *identity.GroupUserProfile) (*identity.GroupUserProfile, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	k := profileKey{defaults.UserID, defaults.GroupID}
	if p, ok := r.m.profiles[k]; ok {
		return &p, false, nil
	}
	r.m.profiles[k] = *defaults
	p := *defaults
	return &p, true, nil
}

func (r memoryProfiles) Update(_ context.Context, profile *identity.GroupUserProfile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	k := profileKey{profile.UserID, profile.GroupID}
	if _, ok := r.m.profiles[k]; !ok {
		return identity.ErrNotFound
	}
	r.m.profiles[k] = *profile
	return nil
}

func (r memoryProfiles) FindInGroup(_ context.Context, groupID, field string) ([]identity.ProfileDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []identity.ProfileDetail
	for k, p := range r.m.profiles {
		if k.groupID != groupID {
			continue
		}
		u := r.m.users[k.userID]
		if p.Name == field || u.ID == field || u.Name == field {
			out = append(out, identity.ProfileDetail{Profile: &p, User: &u})
		}
	}
	slices.SortFunc(out, func(a, b identity.ProfileDetail) int { return strings.Compare(a.User.ID, b.User.ID) })
	return out, nil
}
