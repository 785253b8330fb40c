// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

// Package random generates reproducible random addresses and prefixes
// for tests and benchmarks. All generators take the PRNG as argument,
// seed it with rand.NewPCG for stable test runs.
package random

import (
	"math/rand/v2"
	"net/netip"
)

// IP4 returns a random IPv4 address.
func IP4(prng *rand.Rand) netip.Addr {
	var b [4]byte
	for i := range b {
		b[i] = byte(prng.Uint32() & 0xff)
	}
	return netip.AddrFrom4(b)
}

// IP6 returns a random IPv6 address, never an IPv4-mapped one.
func IP6(prng *rand.Rand) netip.Addr {
	for {
		var b [16]byte
		for i := range b {
			b[i] = byte(prng.Uint32() & 0xff)
		}
		if ip := netip.AddrFrom16(b); !ip.Is4In6() {
			return ip
		}
	}
}

// IP returns a random IPv4 or IPv6 address.
func IP(prng *rand.Rand) netip.Addr {
	if prng.IntN(2) == 1 {
		return IP4(prng)
	}
	return IP6(prng)
}

// Prefix4 returns a random masked IPv4 prefix.
func Prefix4(prng *rand.Rand) netip.Prefix {
	return netip.PrefixFrom(IP4(prng), prng.IntN(33)).Masked()
}

// Prefix6 returns a random masked IPv6 prefix.
func Prefix6(prng *rand.Rand) netip.Prefix {
	return netip.PrefixFrom(IP6(prng), prng.IntN(129)).Masked()
}

// Prefix returns a random masked IPv4 or IPv6 prefix.
func Prefix(prng *rand.Rand) netip.Prefix {
	if prng.IntN(2) == 1 {
		return Prefix4(prng)
	}
	return Prefix6(prng)
}

// Subnet returns a random masked prefix inside parent, at most
// maxExtra bits longer than parent.
func Subnet(prng *rand.Rand, parent netip.Prefix, maxExtra int) netip.Prefix {
	parent = parent.Masked()
	width := parent.Addr().BitLen()
	bits := min(width, parent.Bits()+prng.IntN(maxExtra+1))

	var ip netip.Addr
	if parent.Addr().Is4() {
		ip = IP4(prng)
	} else {
		ip = IP6(prng)
	}

	// copy the network bits of parent into ip
	pb := parent.Addr().AsSlice()
	ib := ip.AsSlice()
	for i := range ib {
		keep := min(8, max(0, parent.Bits()-8*i))
		mask := byte(0xff << (8 - keep))
		ib[i] = pb[i]&mask | ib[i]&^mask
	}

	ip, _ = netip.AddrFromSlice(ib)
	return netip.PrefixFrom(ip, bits).Masked()
}

// Subnets returns n random subnets of parent, duplicates and overlaps
// are likely and intended.
func Subnets(prng *rand.Rand, parent netip.Prefix, maxExtra, n int) []netip.Prefix {
	out := make([]netip.Prefix, 0, n)
	for range n {
		out = append(out, Subnet(prng, parent, maxExtra))
	}
	return out
}

// RealWorldPrefixes4 returns n distinct IPv4 prefixes with lengths /8../28
// outside of 240.0.0.0/8.
func RealWorldPrefixes4(prng *rand.Rand, n int) []netip.Prefix {
	reserved := netip.MustParsePrefix("240.0.0.0/8")
	return realWorld(n, func() (netip.Prefix, bool) {
		pfx := netip.PrefixFrom(IP4(prng), 8+prng.IntN(21)).Masked()
		return pfx, !pfx.Overlaps(reserved)
	})
}

// RealWorldPrefixes6 returns n distinct global unicast IPv6 prefixes
// with lengths /16../56.
func RealWorldPrefixes6(prng *rand.Rand, n int) []netip.Prefix {
	global := netip.MustParsePrefix("2000::/3")
	return realWorld(n, func() (netip.Prefix, bool) {
		pfx := netip.PrefixFrom(IP6(prng), 16+prng.IntN(41)).Masked()
		return pfx, global.Contains(pfx.Addr())
	})
}

func realWorld(n int, gen func() (netip.Prefix, bool)) []netip.Prefix {
	set := make(map[netip.Prefix]struct{}, n)
	out := make([]netip.Prefix, 0, n)
	for len(out) < n {
		pfx, ok := gen()
		if _, dup := set[pfx]; !ok || dup {
			continue
		}
		set[pfx] = struct{}{}
		out = append(out, pfx)
	}
	return out
}
