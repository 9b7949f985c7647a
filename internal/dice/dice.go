// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package dice computes dice rolls, percentile checks, and the textual
// shorthand for dice specs.
//
// Bounds such as the maximum dice count are a caller concern: Engine only
// requires counts and sizes to be positive.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// ErrInvalidDice indicates a roll with a non-positive count or size.
var ErrInvalidDice = errors.New("dice count and size must be positive")

// ErrInvalidThreshold indicates a check threshold outside (0, 100].
var ErrInvalidThreshold = errors.New("check threshold must be between 1 and 100")

// CheckCeiling is the largest value a percentile check can draw.
const CheckCeiling = 100

// Source draws uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Engine draws dice values from a Source.
type Engine struct {
	src Source
}

// New creates an Engine drawing from src.
func New(src Source) *Engine {
	return &Engine{src: src}
}

// NewSeeded creates an Engine backed by a PCG generator seeded from crypto/rand.
func NewSeeded() (*Engine, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, oops.Code("DICE_SEED_FAILED").Wrap(err)
	}
	pcg := rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
	return New(rand.New(pcg)), nil
}

// Roll is the outcome of rolling Count dice with Size faces.
type Roll struct {
	Count   int
	Size    int
	Results []int
	Total   int
	// Formula is empty for a single die, otherwise "3+5=8".
	Formula string
}

// Roll draws count values uniformly from [1, size].
func (e *Engine) Roll(count, size int) (Roll, error) {
	if count <= 0 || size <= 0 {
		return Roll{}, ErrInvalidDice
	}

	results := make([]int, count)
	total := 0
	for i := range results {
		results[i] = e.src.IntN(size) + 1
		total += results[i]
	}

	return Roll{
		Count:   count,
		Size:    size,
		Results: results,
		Total:   total,
		Formula: formula(results, total),
	}, nil
}

func formula(results []int, total int) string {
	if len(results) < 2 {
		return ""
	}
	parts := make([]string, len(results))
	for i, v := range results {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "+") + "=" + strconv.Itoa(total)
}

// CheckResult is the outcome of a percentile check.
type CheckResult struct {
	Maximum int
	Value   int
	Success bool
}

// Check draws one value from [0, CheckCeiling] and succeeds when it does
// not exceed maximum. maximum must be in (0, CheckCeiling].
func (e *Engine) Check(maximum int) (CheckResult, error) {
	if maximum <= 0 || maximum > CheckCeiling {
		return CheckResult{}, ErrInvalidThreshold
	}
	v := e.src.IntN(CheckCeiling + 1)
	return CheckResult{Maximum: maximum, Value: v, Success: v <= maximum}, nil
}
