// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

// Package uint128 implements the unsigned 128-bit integer used as the
// base address of a prefix.
//
// IPv4 bases live in the low 32 bits of Lo, IPv6 bases use all 128 bits.
// All operations are value based and never allocate.
package uint128

import (
	"cmp"
	"encoding/binary"
)

// Uint128 is a big-endian pair of words, Hi holds the most significant bits.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Max is the all-ones value.
var Max = Uint128{^uint64(0), ^uint64(0)}

// From16 interprets b as big-endian 128-bit value.
func From16(b [16]byte) Uint128 {
	return Uint128{
		Hi: binary.BigEndian.Uint64(b[:8]),
		Lo: binary.BigEndian.Uint64(b[8:]),
	}
}

// Bytes16 is the inverse of From16.
func (u Uint128) Bytes16() (b [16]byte) {
	binary.BigEndian.PutUint64(b[:8], u.Hi)
	binary.BigEndian.PutUint64(b[8:], u.Lo)
	return b
}

func (u Uint128) IsZero() bool             { return u.Hi|u.Lo == 0 }
func (u Uint128) And(m Uint128) Uint128    { return Uint128{u.Hi & m.Hi, u.Lo & m.Lo} }
func (u Uint128) Or(m Uint128) Uint128     { return Uint128{u.Hi | m.Hi, u.Lo | m.Lo} }
func (u Uint128) Xor(m Uint128) Uint128    { return Uint128{u.Hi ^ m.Hi, u.Lo ^ m.Lo} }
func (u Uint128) AndNot(m Uint128) Uint128 { return Uint128{u.Hi &^ m.Hi, u.Lo &^ m.Lo} }
func (u Uint128) Compare(v Uint128) int    { return compare(u, v) }
func (u Uint128) SetBit(i uint8) Uint128   { return u.Or(Bit(i)) }

// FitsIn reports whether u has no bits set at or above bit w.
func (u Uint128) FitsIn(w uint8) bool { return u.AndNot(LowMask(w)).IsZero() }

func compare(u, v Uint128) int {
	if c := cmp.Compare(u.Hi, v.Hi); c != 0 {
		return c
	}
	return cmp.Compare(u.Lo, v.Lo)
}

// Bit returns the value with only bit i set, bit 0 is the least significant.
// It panics for i >= 128.
func Bit(i uint8) Uint128 {
	switch {
	case i < 64:
		return Uint128{0, 1 << i}
	case i < 128:
		return Uint128{1 << (i - 64), 0}
	}
	panic("logic error, bit index out of range")
}

// LowMask returns a value with the n least significant bits set.
func LowMask(n uint8) Uint128 {
	switch {
	case n == 0:
		return Uint128{}
	case n < 64:
		return Uint128{0, 1<<n - 1}
	case n == 64:
		return Uint128{0, ^uint64(0)}
	case n < 128:
		return Uint128{1<<(n-64) - 1, ^uint64(0)}
	}
	return Max
}

// HostMask returns the host part mask for a prefix of length n in
// an address space of width w.
//
//	HostMask(24, 32) = 0x0000_00ff
func HostMask(n, w uint8) Uint128 {
	return LowMask(w - n)
}

// NetMask returns the network part mask for a prefix of length n in
// an address space of width w.
//
//	NetMask(24, 32) = 0xffff_ff00
func NetMask(n, w uint8) Uint128 {
	return LowMask(w).AndNot(HostMask(n, w))
}
