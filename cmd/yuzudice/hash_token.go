// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package main

import (
	"bufio"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/purerosefallen/YuzuDice/internal/auth"
)

// NewHashTokenCmd creates the hash-token subcommand.
func NewHashTokenCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token",
		Short: "Hash an admin API token read from stdin",
		Long: `Reads one line from standard input and prints its argon2id hash.
Set YUZUDICE_ADMIN_TOKEN to the printed value to keep the plain token out
of the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(deps.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return oops.Code("TOKEN_READ_FAILED").Errorf("no token on stdin")
			}
			hash, err := auth.HashToken(strings.TrimSpace(line))
			if err != nil {
				return err //nolint:wrapcheck // already coded by auth
			}
			cmd.Println(hash)
			return nil
		},
	}
}
