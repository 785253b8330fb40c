// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

// fold reduces xs from the left, starting with acc.
func fold[T, A any](xs []T, acc A, fn func(A, T) A) A {
	for _, x := range xs {
		acc = fn(acc, x)
	}
	return acc
}

// flatMap maps every element of xs to a slice and concatenates
// the results in order. The input is never modified.
func flatMap[T, U any](xs []T, fn func(T) []U) []U {
	out := make([]U, 0, len(xs))
	for _, x := range xs {
		out = append(out, fn(x)...)
	}
	return out
}

// cmpPrefix, helper function, compare func for prefix sort.
func cmpPrefix(a, b Prefix) int {
	return a.Compare(b)
}
