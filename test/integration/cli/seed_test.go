// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

//go:build integration

package cli_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

const seedFile = `
groups:
  - id: g1
    allow: deny
    welcome: "Hello {{&name}}, welcome aboard."
templates:
  - key: bad_params
    content: "Try again, {{&name}}."
admins:
  - id: "100"
    name: Owner
    permissions: [UserWrite, GroupWrite]
`

var _ = Describe("YuzuDice CLI", func() {
	var (
		ctx      context.Context
		seedPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		resetDatabase(ctx, env.pool)

		seedPath = filepath.Join(GinkgoT().TempDir(), "seed.yaml")
		Expect(os.WriteFile(seedPath, []byte(seedFile), 0o600)).To(Succeed())

		output, err := yuzudice(ctx, "", "migrate", "up")
		Expect(err).NotTo(HaveOccurred(), "migrate failed: %s", output)
		Expect(output).To(ContainSubstring("Migrations completed successfully"))
	})

	Describe("migrate status", func() {
		It("lists every migration as applied", func() {
			output, err := yuzudice(ctx, "", "migrate", "status")
			Expect(err).NotTo(HaveOccurred(), output)
			Expect(output).To(ContainSubstring("000001_identity"))
			Expect(output).To(ContainSubstring("000002_templates"))
			Expect(output).To(ContainSubstring("Pending: none"))
		})
	})

	Describe("seed", func() {
		It("writes groups, templates, and administrators", func() {
			output, err := yuzudice(ctx, "", "seed", seedPath)
			Expect(err).NotTo(HaveOccurred(), "seed failed: %s", output)
			Expect(output).To(ContainSubstring("1 templates set, 1 groups updated, 1 users updated"))

			var policy int
			var welcome string
			err = env.pool.QueryRow(ctx,
				"SELECT allowed_to_join, welcome_message FROM chat_groups WHERE id = $1", "g1",
			).Scan(&policy, &welcome)
			Expect(err).NotTo(HaveOccurred())
			Expect(policy).To(Equal(-1))
			Expect(welcome).To(Equal("Hello {{&name}}, welcome aboard."))
		})

		It("is idempotent", func() {
			_, err := yuzudice(ctx, "", "seed", seedPath)
			Expect(err).NotTo(HaveOccurred())

			output, err := yuzudice(ctx, "", "seed", seedPath)
			Expect(err).NotTo(HaveOccurred(), output)
			Expect(output).To(ContainSubstring("0 templates set, 0 groups updated, 0 users updated, 3 unchanged"))
		})
	})

	Describe("console", func() {
		It("answers with seeded settings", func() {
			_, err := yuzudice(ctx, "", "seed", seedPath)
			Expect(err).NotTo(HaveOccurred())

			output, err := yuzudice(ctx, "/welcome\n/join\n.r 3d6 extra words here\n",
				"console", "--user-id", "200", "--username", "Bob", "--group-id", "g1")
			Expect(err).NotTo(HaveOccurred(), output)
			Expect(output).To(ContainSubstring("Hello Bob, welcome aboard."))
			Expect(output).To(ContainSubstring("[invitation to g1: "))
			Expect(output).To(ContainSubstring("rolled 3d6"))
		})
	})
})
