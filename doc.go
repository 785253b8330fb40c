// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

// Package pfxset provides exact set algebra on CIDR prefixes
// for IPv4 and IPv6 address spaces.
//
// The package is built around three operations:
//
//   - Exclude:  universe minus a list of prefixes, by recursive bisection
//   - Collapse: the minimal sorted non-overlapping cover of a prefix list
//   - Query:    the complement of an in-scope list within the routable
//     address space of a family, after removing the reserved blocks
//
// A [Prefix] is an immutable value of base address, length and address
// width (32 or 128). Exclude and Collapse are pure functions, they never
// modify their input and share no state, so they may be called
// concurrently. [ExcludeParallel] spreads the bisection work of a single
// call over several goroutines with identical results.
//
// A [Set] wraps a collapsed prefix list with a bart.Lite table for fast
// membership lookups.
//
// Example:
//
//	rest, _ := pfxset.Exclude(pfxset.MustParsePrefix("0.0.0.0/0"),
//		[]pfxset.Prefix{pfxset.MustParsePrefix("10.0.0.0/8")})
//	rest, _ = pfxset.Collapse(rest)
//	// 0.0.0.0/5 8.0.0.0/7 11.0.0.0/8 12.0.0.0/6 16.0.0.0/4 32.0.0.0/3 64.0.0.0/2 128.0.0.0/1
package pfxset
