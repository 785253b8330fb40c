// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"cmp"
	"net/netip"

	"github.com/pkg/errors"

	"github.com/routekit/pfxset/internal/uint128"
)

// Address space widths.
const (
	Width4 = 32
	Width6 = 128
)

// Prefix is a CIDR block, identified by its base address, the prefix
// length and the bit width of the address family.
//
// A Prefix is a comparable value, two prefixes are equal iff
// base, length and width are equal, so == may be used.
// The low width-length bits of the base are always zero.
//
// The zero value is not a valid Prefix.
type Prefix struct {
	base  uint128.Uint128
	bits  uint8
	width uint8
}

// PrefixFromUint returns the prefix with base hi:lo, length bits and the
// address width (32 or 128). IPv4 bases occupy the low 32 bits of lo.
//
// It returns ErrInvalidPrefix if width is neither 32 nor 128, bits is
// out of range, the base does not fit into width or has host bits set.
func PrefixFromUint(hi, lo uint64, bits, width int) (Prefix, error) {
	if width != Width4 && width != Width6 {
		return Prefix{}, errors.Wrapf(ErrInvalidPrefix, "width %d", width)
	}
	if bits < 0 || bits > width {
		return Prefix{}, errors.Wrapf(ErrInvalidPrefix, "length %d out of range [0, %d]", bits, width)
	}

	base := uint128.Uint128{Hi: hi, Lo: lo}
	if !base.FitsIn(uint8(width)) {
		return Prefix{}, errors.Wrapf(ErrInvalidPrefix, "base %#x:%#x exceeds width %d", hi, lo, width)
	}
	if !base.And(uint128.HostMask(uint8(bits), uint8(width))).IsZero() {
		return Prefix{}, errors.Wrapf(ErrInvalidPrefix, "base %#x:%#x has host bits set beyond /%d", hi, lo, bits)
	}

	return Prefix{base: base, bits: uint8(bits), width: uint8(width)}, nil
}

// PrefixFrom returns the prefix addr/bits. The width is 32 for IPv4
// addresses and 128 for everything else, IPv4-mapped IPv6 addresses
// stay in the 128-bit space. Zones are rejected.
func PrefixFrom(addr netip.Addr, bits int) (Prefix, error) {
	if !addr.IsValid() {
		return Prefix{}, errors.Wrap(ErrInvalidPrefix, "invalid address")
	}
	if addr.Zone() != "" {
		return Prefix{}, errors.Wrapf(ErrInvalidPrefix, "%s: zone not allowed", addr)
	}

	if addr.Is4() {
		a4 := addr.As4()
		lo := uint64(a4[0])<<24 | uint64(a4[1])<<16 | uint64(a4[2])<<8 | uint64(a4[3])
		return PrefixFromUint(0, lo, bits, Width4)
	}

	u := uint128.From16(addr.As16())
	return PrefixFromUint(u.Hi, u.Lo, bits, Width6)
}

// PrefixFromNetip converts a netip.Prefix, the prefix must be masked.
func PrefixFromNetip(pfx netip.Prefix) (Prefix, error) {
	if !pfx.IsValid() {
		return Prefix{}, errors.Wrapf(ErrInvalidPrefix, "%s", pfx)
	}
	return PrefixFrom(pfx.Addr(), pfx.Bits())
}

// ParsePrefix parses s in CIDR notation, host bits must be zero.
func ParsePrefix(s string) (Prefix, error) {
	pfx, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix{}, errors.Wrap(ErrInvalidPrefix, err.Error())
	}
	return PrefixFromNetip(pfx)
}

// MustParsePrefix calls ParsePrefix and panics on error.
// It is intended for tests and constant tables.
func MustParsePrefix(s string) Prefix {
	p, err := ParsePrefix(s)
	if err != nil {
		panic(err)
	}
	return p
}

// IsValid reports whether p is not the zero value.
func (p Prefix) IsValid() bool {
	return p.width == Width4 || p.width == Width6
}

// Bits returns the prefix length.
func (p Prefix) Bits() int { return int(p.bits) }

// Width returns the bit width of the address family, 32 or 128.
func (p Prefix) Width() int { return int(p.width) }

// Base returns the base address as two 64-bit words.
func (p Prefix) Base() (hi, lo uint64) { return p.base.Hi, p.base.Lo }

// Is4 reports whether p is in the 32-bit address space.
func (p Prefix) Is4() bool { return p.width == Width4 }

// Equal reports whether p and o are the same prefix.
func (p Prefix) Equal(o Prefix) bool { return p == o }

// Contains reports whether o is a subset of p.
func (p Prefix) Contains(o Prefix) bool {
	return p.width == o.width &&
		o.bits >= p.bits &&
		o.base.And(uint128.NetMask(p.bits, p.width)) == p.base
}

// Overlaps reports whether p and o share any address.
// CIDR blocks are either disjoint or nested.
func (p Prefix) Overlaps(o Prefix) bool {
	return p.Contains(o) || o.Contains(p)
}

// ContainsAddr reports whether addr is within p.
func (p Prefix) ContainsAddr(addr netip.Addr) bool {
	host, err := PrefixFrom(addr, int(p.width))
	if err != nil || host.width != p.width {
		return false
	}
	return p.Contains(host)
}

// Split returns the two halves of p, ok is false for a host prefix.
//
//	10.0.0.0/8 -> 10.0.0.0/9, 10.128.0.0/9
func (p Prefix) Split() (lo, hi Prefix, ok bool) {
	if p.bits >= p.width {
		return Prefix{}, Prefix{}, false
	}
	lo = Prefix{base: p.base, bits: p.bits + 1, width: p.width}
	hi = Prefix{base: p.base.SetBit(p.width - p.bits - 1), bits: p.bits + 1, width: p.width}
	return lo, hi, true
}

// Parent returns the enclosing prefix one bit shorter, ok is false for /0.
func (p Prefix) Parent() (parent Prefix, ok bool) {
	if p.bits == 0 {
		return Prefix{}, false
	}
	bits := p.bits - 1
	return Prefix{base: p.base.And(uint128.NetMask(bits, p.width)), bits: bits, width: p.width}, true
}

// IsSibling reports whether p and o are the two halves of a common parent.
func (p Prefix) IsSibling(o Prefix) bool {
	if p.width != o.width || p.bits != o.bits || p.bits == 0 {
		return false
	}
	return p.base.Xor(o.base) == uint128.Bit(p.width-p.bits)
}

// Addr returns the first address of p.
func (p Prefix) Addr() netip.Addr {
	return p.addrOf(p.base)
}

// LastAddr returns the last address of p.
func (p Prefix) LastAddr() netip.Addr {
	return p.addrOf(p.base.Or(uint128.HostMask(p.bits, p.width)))
}

func (p Prefix) addrOf(u uint128.Uint128) netip.Addr {
	switch p.width {
	case Width4:
		v := uint32(u.Lo)
		return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	case Width6:
		return netip.AddrFrom16(u.Bytes16())
	}
	return netip.Addr{}
}

// Netip returns p as netip.Prefix.
func (p Prefix) Netip() netip.Prefix {
	if !p.IsValid() {
		return netip.Prefix{}
	}
	return netip.PrefixFrom(p.Addr(), int(p.bits))
}

// String returns p in CIDR notation, "invalid Prefix" for the zero value.
func (p Prefix) String() string {
	if !p.IsValid() {
		return "invalid Prefix"
	}
	return p.Netip().String()
}

// Compare returns an integer comparing two prefixes.
// The ordering is by width, then base, then length.
func (p Prefix) Compare(o Prefix) int {
	if c := cmp.Compare(p.width, o.width); c != 0 {
		return c
	}
	if c := p.base.Compare(o.base); c != 0 {
		return c
	}
	return cmp.Compare(p.bits, o.bits)
}
