// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package dice

import (
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Spec names how many dice of which size to roll.
type Spec struct {
	Count int
	Size  int
}

// shorthandLexer has no whitespace rule, so padded input fails to lex.
var shorthandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "D", Pattern: `d`},
})

// shorthand matches: [count] "d" size
type shorthand struct {
	Count string `parser:"@Int?"`
	Size  string `parser:"'d' @Int"`
}

var shorthandParser = participle.MustBuild[shorthand](participle.Lexer(shorthandLexer))

// ParseShorthand recognizes "d<size>" and "<count>d<size>".
// The count defaults to 1. Anything else reports ok == false so callers can
// fall back to another syntax. Range checks are left to the caller.
func ParseShorthand(s string) (spec Spec, ok bool) {
	ast, err := shorthandParser.ParseString("", s)
	if err != nil {
		return Spec{}, false
	}
	size, err := strconv.Atoi(ast.Size)
	if err != nil {
		return Spec{}, false
	}
	count := 1
	if ast.Count != "" {
		if count, err = strconv.Atoi(ast.Count); err != nil {
			return Spec{}, false
		}
	}
	return Spec{Count: count, Size: size}, true
}
