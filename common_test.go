// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"math/rand/v2"
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routekit/pfxset/internal/golden"
	"github.com/routekit/pfxset/internal/tests/random"
)

// workLoadN to adjust loops for tests with -short
func workLoadN() int {
	if testing.Short() {
		return 100
	}
	return 1_000
}

// abbreviation
var mpa = netip.MustParseAddr

// mpps parses a list of canonical CIDRs
func mpps(ss ...string) []Prefix {
	out := make([]Prefix, 0, len(ss))
	for _, s := range ss {
		out = append(out, mpp(s))
	}
	return out
}

// fromNetip converts masked netip prefixes
func fromNetip(t testing.TB, pfxs []netip.Prefix) []Prefix {
	t.Helper()
	out := make([]Prefix, 0, len(pfxs))
	for _, pfx := range pfxs {
		p, err := PrefixFromNetip(pfx)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func toNetip(pfxs []Prefix) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(pfxs))
	for _, p := range pfxs {
		out = append(out, p.Netip())
	}
	return out
}

func sorted(pfxs []Prefix) []Prefix {
	return slices.SortedFunc(slices.Values(pfxs), cmpPrefix)
}

// goldContains, brute force membership of addr in the union of pfxs
func goldContains(pfxs []Prefix, addr netip.Addr) bool {
	return golden.GoldSet(toNetip(pfxs)).Contains(addr)
}

// requireSameCover checks that a and b cover the same addresses,
// the probes of all prefixes on both sides make this exact.
func requireSameCover(t *testing.T, a, b []Prefix) {
	t.Helper()
	for _, addr := range golden.Probes(toNetip(slices.Concat(a, b))...) {
		require.Equal(t, goldContains(a, addr), goldContains(b, addr), "cover differs at %s\na: %v\nb: %v", addr, a, b)
	}
}

// requireCanonical checks the PrefixSet invariants: sorted, no element
// overlaps another and no two adjacent elements are siblings.
func requireCanonical(t *testing.T, pfxs []Prefix) {
	t.Helper()
	for i := 1; i < len(pfxs); i++ {
		a, b := pfxs[i-1], pfxs[i]
		require.Negative(t, a.Compare(b), "not sorted: %s, %s", a, b)
		require.False(t, a.Overlaps(b), "overlap: %s, %s", a, b)
		require.False(t, a.IsSibling(b), "unmerged siblings: %s, %s", a, b)
	}
}

// randomExcludes returns n random subnets of universe and some random
// prefixes of the same family anywhere in the address space.
func randomExcludes(t testing.TB, prng *rand.Rand, universe Prefix, n int) []Prefix {
	t.Helper()
	var raw []netip.Prefix
	for range n {
		switch prng.IntN(4) {
		case 0:
			if universe.Is4() {
				raw = append(raw, random.Prefix4(prng))
			} else {
				raw = append(raw, random.Prefix6(prng))
			}
		default:
			raw = append(raw, random.Subnet(prng, universe.Netip(), 16))
		}
	}
	return fromNetip(t, raw)
}
