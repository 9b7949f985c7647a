// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package access

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Read capabilities occupy the low byte, write capabilities the second
// byte, and bot-lifecycle capabilities the third.
const (
	UserRead          Permission = 0x1
	GroupRead         Permission = 0x2
	TemplateRead      Permission = 0x4
	GroupTemplateRead Permission = 0x8

	UserWrite          Permission = 0x100
	GroupWrite         Permission = 0x200
	TemplateWrite      Permission = 0x400
	GroupTemplateWrite Permission = 0x800

	InviteBot  Permission = 0x10000
	DismissBot Permission = 0x20000
)

// named is the administrative name of every flag.
var named = map[string]Permission{
	"UserRead":           UserRead,
	"GroupRead":          GroupRead,
	"TemplateRead":       TemplateRead,
	"GroupTemplateRead":  GroupTemplateRead,
	"UserWrite":          UserWrite,
	"GroupWrite":         GroupWrite,
	"TemplateWrite":      TemplateWrite,
	"GroupTemplateWrite": GroupTemplateWrite,
	"InviteBot":          InviteBot,
	"DismissBot":         DismissBot,
}

// Lookup returns the flag registered under name. Matching ignores case.
func Lookup(name string) (Permission, bool) {
	if p, ok := named[name]; ok {
		return p, true
	}
	for n, p := range named {
		if strings.EqualFold(n, name) {
			return p, true
		}
	}
	return 0, false
}

// Names returns every flag name ordered by bit value.
func Names() []string {
	return slices.SortedFunc(maps.Keys(named), func(a, b string) int {
		return cmp.Compare(named[a], named[b])
	})
}

// NamesOf returns the names of the flags set in held, ordered by bit value.
func NamesOf(held Permission) []string {
	var out []string
	for _, n := range Names() {
		if Has(held, named[n]) {
			out = append(out, n)
		}
	}
	return out
}
