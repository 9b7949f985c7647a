// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package identitytest provides testify mocks of the identity repositories.
package identitytest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/purerosefallen/YuzuDice/internal/identity"
)

// UserRepository is a mock identity.UserRepository.
type UserRepository struct {
	mock.Mock
}

var _ identity.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) FindOrCreate(ctx context.Context, defaults *identity.User) (*identity.User, bool, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*identity.User), args.Bool(1), args.Error(2)
}

func (m *UserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter identity.UserFilter) ([]*identity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *UserRepository) FindByIDOrName(ctx context.Context, field string) ([]*identity.User, error) {
	args := m.Called(ctx, field)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

// GroupRepository is a mock identity.GroupRepository.
type GroupRepository struct {
	mock.Mock
}

var _ identity.GroupRepository = (*GroupRepository)(nil)

func (m *GroupRepository) FindOrCreate(ctx context.Context, id string) (*identity.Group, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*identity.Group), args.Bool(1), args.Error(2)
}

func (m *GroupRepository) Update(ctx context.Context, group *identity.Group) error {
	return m.Called(ctx, group).Error(0)
}

// ProfileRepository is a mock identity.ProfileRepository.
type ProfileRepository struct {
	mock.Mock
}

var _ identity.ProfileRepository = (*ProfileRepository)(nil)

func (m *ProfileRepository) FindOrCreate(ctx context.Context, defaults *identity.GroupUserProfile) (*identity.GroupUserProfile, bool, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*identity.GroupUserProfile), args.Bool(1), args.Error(2)
}

func (m *ProfileRepository) Update(ctx context.Context, profile *identity.GroupUserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *ProfileRepository) FindInGroup(ctx context.Context, groupID, field string) ([]identity.ProfileDetail, error) {
	args := m.Called(ctx, groupID, field)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.ProfileDetail), args.Error(1)
}
