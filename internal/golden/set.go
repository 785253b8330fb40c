// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

// Package golden provides simple and slow reference implementations
// for testing the prefix set algebra.
package golden

import (
	"cmp"
	"net/netip"
	"slices"
)

// GoldSet is a simple and slow prefix set, implemented as a slice of
// prefixes, as a golden reference for pfxset. The elements may overlap,
// membership is the union of their ranges.
type GoldSet []netip.Prefix

// Insert adds pfx, exact duplicates are dropped.
func (s *GoldSet) Insert(pfx netip.Prefix) {
	pfx = pfx.Masked()
	if slices.Contains(*s, pfx) {
		return // de-dupe
	}
	*s = append(*s, pfx)
}

// Contains reports whether any element covers addr.
func (s GoldSet) Contains(addr netip.Addr) bool {
	for _, pfx := range s {
		if pfx.Contains(addr) {
			return true
		}
	}
	return false
}

// OverlapsPrefix reports whether any element overlaps pfx.
func (s GoldSet) OverlapsPrefix(pfx netip.Prefix) bool {
	pfx = pfx.Masked()
	for _, p := range s {
		if p.Overlaps(pfx) {
			return true
		}
	}
	return false
}

// Sort, inplace by netip.Prefix, all prefixes are in normalized form
func (s GoldSet) Sort() {
	slices.SortFunc(s, CmpPrefix)
}

// Difference is universe minus all excludes, by brute force membership.
type Difference struct {
	Universe netip.Prefix
	Excludes GoldSet
}

// Contains reports whether addr is in the universe and in no exclude.
func (d Difference) Contains(addr netip.Addr) bool {
	return d.Universe.Contains(addr) && !d.Excludes.Contains(addr)
}

// Probes returns the addresses where the membership of a union of the
// given prefixes may change: the first and last address of every prefix
// and their outer neighbors. Two unions of prefixes cover the same
// addresses iff they agree on the probes of all prefixes of both.
func Probes(pfxs ...netip.Prefix) []netip.Addr {
	var out []netip.Addr
	for _, pfx := range pfxs {
		first := pfx.Masked().Addr()
		last := LastAddr(pfx)

		out = append(out, first, last)
		if prev := first.Prev(); prev.IsValid() {
			out = append(out, prev)
		}
		if next := last.Next(); next.IsValid() {
			out = append(out, next)
		}
	}

	slices.SortFunc(out, netip.Addr.Compare)
	return slices.Compact(out)
}

// LastAddr returns the last address of pfx.
func LastAddr(pfx netip.Prefix) netip.Addr {
	pfx = pfx.Masked()
	b := pfx.Addr().AsSlice()

	for i := range b {
		host := min(8, max(0, 8*(i+1)-pfx.Bits()))
		b[i] |= byte(1<<host - 1)
	}

	addr, _ := netip.AddrFromSlice(b)
	return addr
}

// CmpPrefix, helper function, compare func for prefix sort,
// all cidrs are already normalized
func CmpPrefix(a, b netip.Prefix) int {
	if cmpAddr := a.Addr().Compare(b.Addr()); cmpAddr != 0 {
		return cmpAddr
	}

	return cmp.Compare(a.Bits(), b.Bits())
}
