// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"slices"

	"github.com/pkg/errors"
)

// Collapse returns the minimal sorted cover of pfxs.
//
// The result covers exactly the union of the input ranges, no element
// contains or equals another and no two elements are siblings of a
// common parent. The input is not modified.
//
//	Collapse([10.0.0.0/9 10.128.0.0/9]) = [10.0.0.0/8]
//	Collapse([10.0.0.0/8 10.1.0.0/16])  = [10.0.0.0/8]
//
// It returns ErrInvalidPrefix for a zero value and ErrInvalidInput
// for mixed widths.
func Collapse(pfxs []Prefix) ([]Prefix, error) {
	if len(pfxs) == 0 {
		return nil, nil
	}
	if err := sameWidth(pfxs[0].width, pfxs); err != nil {
		return nil, errors.WithMessage(err, "collapse")
	}

	sorted := slices.SortedFunc(slices.Values(pfxs), cmpPrefix)
	return mergeSiblings(dropContained(sorted)), nil
}

// dropContained removes every prefix covered by an earlier one, the
// input must be sorted. In sorted order a covering prefix is always the
// last one kept, the kept prefixes are disjoint and ascending.
func dropContained(sorted []Prefix) []Prefix {
	return fold(sorted, make([]Prefix, 0, len(sorted)), func(kept []Prefix, p Prefix) []Prefix {
		if len(kept) != 0 && kept[len(kept)-1].Contains(p) {
			return kept
		}
		return append(kept, p)
	})
}

// mergeSiblings repeats mergePass until a fixed point is reached.
// Every merge removes one element, so this terminates.
func mergeSiblings(pfxs []Prefix) []Prefix {
	for {
		next, merged := mergePass(pfxs)
		if !merged {
			return next
		}
		pfxs = next
	}
}

// mergePass replaces adjacent sibling pairs by their parent, in one scan.
// Sorted order and disjointness are preserved.
func mergePass(pfxs []Prefix) (out []Prefix, merged bool) {
	out = make([]Prefix, 0, len(pfxs))

	for i := 0; i < len(pfxs); i++ {
		if i+1 < len(pfxs) && pfxs[i].IsSibling(pfxs[i+1]) {
			parent, _ := pfxs[i].Parent()
			out = append(out, parent)
			merged = true
			i++
			continue
		}
		out = append(out, pfxs[i])
	}

	return out, merged
}
