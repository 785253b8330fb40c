// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Exclude returns the prefixes covering universe minus all excludes.
//
// The excludes may be unsorted, overlapping and redundant, they are
// folded one by one over the remaining blocks. The returned slice is
// disjoint but neither sorted nor collapsed, use [Collapse] for the
// canonical form.
//
//	Exclude(0.0.0.0/0, [10.0.0.0/8]) = [
//	  128.0.0.0/1 64.0.0.0/2 32.0.0.0/3 16.0.0.0/4
//	  0.0.0.0/5 12.0.0.0/6 8.0.0.0/7 11.0.0.0/8
//	]
//
// It returns ErrInvalidPrefix for a zero value and ErrInvalidInput
// if the widths of universe and excludes differ.
func Exclude(universe Prefix, excludes []Prefix) ([]Prefix, error) {
	if err := checkExclude(universe, excludes); err != nil {
		return nil, err
	}

	return fold(excludes, []Prefix{universe}, func(remain []Prefix, e Prefix) []Prefix {
		return flatMap(remain, func(n Prefix) []Prefix { return subtract(n, e) })
	}), nil
}

// ExcludeParallel is Exclude with the bisection of the remaining blocks
// against each exclusion prefix spread over up to workers goroutines.
//
// The fold over the excludes stays sequential, every exclusion prefix
// sees the complete result of its predecessors. The result is
// identical to Exclude, including the order.
func ExcludeParallel(universe Prefix, excludes []Prefix, workers int) ([]Prefix, error) {
	if err := checkExclude(universe, excludes); err != nil {
		return nil, err
	}
	if workers <= 1 {
		return Exclude(universe, excludes)
	}

	remain := []Prefix{universe}
	for _, e := range excludes {
		remain = subtractChunked(remain, e, workers)
	}
	return remain, nil
}

func checkExclude(universe Prefix, excludes []Prefix) error {
	if !universe.IsValid() {
		return errors.Wrap(ErrInvalidPrefix, "universe: zero value")
	}
	if err := sameWidth(universe.width, excludes); err != nil {
		return errors.WithMessage(err, "excludes")
	}
	return nil
}

// minChunk, below this number of blocks per worker the goroutine
// overhead dominates.
const minChunk = 64

// subtractChunked subtracts e from every block in remain, contiguous
// chunks of remain are processed concurrently, the chunk results are
// concatenated in chunk order.
func subtractChunked(remain []Prefix, e Prefix, workers int) []Prefix {
	size := max(minChunk, (len(remain)+workers-1)/workers)
	if len(remain) <= size {
		return flatMap(remain, func(n Prefix) []Prefix { return subtract(n, e) })
	}

	chunks := make([][]Prefix, (len(remain)+size-1)/size)

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range chunks {
		lo := i * size
		hi := min(lo+size, len(remain))
		g.Go(func() error {
			chunks[i] = flatMap(remain[lo:hi], func(n Prefix) []Prefix { return subtract(n, e) })
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return flatMap(chunks, func(c []Prefix) []Prefix { return c })
}

// subtract returns n minus e.
//
// If n strictly contains e, n is bisected until the lengths match:
// at each step the half without e is emitted and the half
// with e is split again.
func subtract(n, e Prefix) []Prefix {
	switch {
	case e.Contains(n):
		return nil
	case !n.Contains(e):
		return []Prefix{n}
	}

	out := make([]Prefix, 0, e.bits-n.bits)
	for n.bits < e.bits {
		lo, hi, _ := n.Split()
		if lo.Contains(e) {
			out = append(out, hi)
			n = lo
		} else {
			out = append(out, lo)
			n = hi
		}
	}
	return out
}
