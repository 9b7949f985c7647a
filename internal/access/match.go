// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package access

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Match returns the flag names matching a glob pattern such as "*Write"
// or "Group{Read,Write}". An empty pattern matches every name.
func Match(pattern string) ([]string, error) {
	if pattern == "" {
		return Names(), nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oops.In("access").
			Code("INVALID_PERMISSION_PATTERN").
			With("pattern", pattern).
			Wrap(err)
	}
	var out []string
	for _, n := range Names() {
		if g.Match(n) {
			out = append(out, n)
		}
	}
	return out, nil
}
