// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/store"
	"github.com/purerosefallen/YuzuDice/internal/template"
)

func uniqueID(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}

func newUser(id, name string) *identity.User {
	u := &identity.User{ID: id, Name: name}
	u.Touch(time.Now().UTC().Truncate(time.Microsecond))
	return u
}

var _ = Describe("UserRepository", func() {
	var (
		ctx   context.Context
		users *store.UserRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = store.NewUserRepository(testPool)
	})

	It("creates once and then finds", func() {
		id := uniqueID("u")
		first, created, err := users.FindOrCreate(ctx, newUser(id, "Alice"))
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())
		Expect(first.Name).To(Equal("Alice"))

		second, created, err := users.FindOrCreate(ctx, newUser(id, "Other"))
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeFalse())
		Expect(second.Name).To(Equal("Alice"))
	})

	It("stores an empty name as unset", func() {
		id := uniqueID("u")
		u, _, err := users.FindOrCreate(ctx, newUser(id, ""))
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Name).To(BeEmpty())

		found, err := users.List(ctx, identity.UserFilter{ID: id})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(HaveLen(1))
		Expect(found[0].Name).To(BeEmpty())
	})

	It("updates permissions and bans", func() {
		id := uniqueID("u")
		u, _, err := users.FindOrCreate(ctx, newUser(id, "Bob"))
		Expect(err).NotTo(HaveOccurred())

		u.Permissions = access.UserRead | access.InviteBot
		u.BanReason = "spam"
		u.Touch(time.Now())
		Expect(users.Update(ctx, u)).To(Succeed())

		found, err := users.FindByIDOrName(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(HaveLen(1))
		Expect(found[0].Permissions).To(Equal(access.UserRead | access.InviteBot))
		Expect(found[0].Banned()).To(BeTrue())
	})

	It("reports a missing user on update", func() {
		err := users.Update(ctx, newUser(uniqueID("u"), "ghost"))
		Expect(err).To(MatchError(identity.ErrNotFound))
	})
})

var _ = Describe("ProfileRepository", func() {
	var (
		ctx      context.Context
		users    *store.UserRepository
		groups   *store.GroupRepository
		profiles *store.ProfileRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = store.NewUserRepository(testPool)
		groups = store.NewGroupRepository(testPool)
		profiles = store.NewProfileRepository(testPool)
	})

	It("keys profiles by user and group", func() {
		userID, groupID := uniqueID("u"), uniqueID("g")
		_, _, err := users.FindOrCreate(ctx, newUser(userID, "Carol"))
		Expect(err).NotTo(HaveOccurred())
		_, _, err = groups.FindOrCreate(ctx, groupID)
		Expect(err).NotTo(HaveOccurred())

		defaults := &identity.GroupUserProfile{ID: ulid.Make(), UserID: userID, GroupID: groupID, Name: "Carol"}
		defaults.Touch(time.Now())
		p, created, err := profiles.FindOrCreate(ctx, defaults)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())
		Expect(p.ID).To(Equal(defaults.ID))

		again := &identity.GroupUserProfile{ID: ulid.Make(), UserID: userID, GroupID: groupID}
		p2, created, err := profiles.FindOrCreate(ctx, again)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeFalse())
		Expect(p2.ID).To(Equal(defaults.ID))

		p2.Name = "Knight"
		p2.Touch(time.Now())
		Expect(profiles.Update(ctx, p2)).To(Succeed())

		for _, field := range []string{"Knight", userID, "Carol"} {
			details, err := profiles.FindInGroup(ctx, groupID, field)
			Expect(err).NotTo(HaveOccurred())
			Expect(details).To(HaveLen(1), "field %q", field)
			Expect(details[0].DisplayName("x")).To(Equal("Knight"))
		}
	})

	It("rejects a profile for an unknown user", func() {
		groupID := uniqueID("g")
		_, _, err := groups.FindOrCreate(ctx, groupID)
		Expect(err).NotTo(HaveOccurred())

		defaults := &identity.GroupUserProfile{ID: ulid.Make(), UserID: uniqueID("missing"), GroupID: groupID}
		defaults.Touch(time.Now())
		_, _, err = profiles.FindOrCreate(ctx, defaults)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Resolver over PostgreSQL", func() {
	It("materializes all three records and honors bans", func() {
		ctx := context.Background()
		users := store.NewUserRepository(testPool)
		groups := store.NewGroupRepository(testPool)
		resolver := identity.NewResolver(users, groups, store.NewProfileRepository(testPool))

		actor := identity.Actor{UserID: uniqueID("u"), Username: "Dana", GroupID: uniqueID("g")}
		res, err := resolver.Resolve(ctx, actor)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Banned()).To(BeFalse())
		Expect(res.Profile).NotTo(BeNil())
		Expect(res.DisplayName("raw")).To(Equal("Dana"))

		res.Group.BanReason = "muted"
		res.Group.Touch(time.Now())
		Expect(groups.Update(ctx, res.Group)).To(Succeed())

		res, err = resolver.Resolve(ctx, actor)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ban).To(Equal(&identity.Ban{Level: identity.BanLevelGroup, Reason: "muted"}))
	})
})

var _ = Describe("TemplateRepository", func() {
	It("sets, renders, and clears a group override", func() {
		ctx := context.Background()
		groupID := uniqueID("g")
		_, _, err := store.NewGroupRepository(testPool).FindOrCreate(ctx, groupID)
		Expect(err).NotTo(HaveOccurred())

		repo := store.NewTemplateRepository(testPool)
		mgr := template.NewManager(repo, nil)
		resolver := template.NewResolver(repo, nil, nil)
		data := map[string]any{"action": "test"}

		_, err = mgr.Set(ctx, template.KeyPermissionDenied, template.ForGroup(groupID), "&lt;{{&amp;action}}&gt;")
		Expect(err).NotTo(HaveOccurred())
		Expect(resolver.Render(ctx, template.KeyPermissionDenied, data, groupID)).To(Equal("<test>"))

		listing, err := mgr.List(ctx, template.ForGroup(groupID))
		Expect(err).NotTo(HaveOccurred())
		Expect(listing.Overrides).To(HaveLen(1))

		Expect(mgr.Clear(ctx, template.KeyPermissionDenied, template.ForGroup(groupID))).To(Succeed())
		Expect(resolver.Render(ctx, template.KeyPermissionDenied, data, groupID)).To(Equal("Permission denied: test."))
		Expect(mgr.Clear(ctx, template.KeyPermissionDenied, template.ForGroup(groupID))).
			To(MatchError(template.ErrNotFound))
	})

	It("rejects overrides for unknown groups", func() {
		repo := store.NewTemplateRepository(testPool)
		t := &template.Template{ID: ulid.Make(), Key: template.KeyRoll, Scope: template.ForGroup(uniqueID("g")), Content: "x"}
		t.Touch(time.Now())
		Expect(repo.Save(context.Background(), t)).To(HaveOccurred())
	})
})
