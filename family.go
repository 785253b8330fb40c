// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

// Family is an address family.
type Family uint8

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

// Width returns the address width of f, 0 for an unknown family.
func (f Family) Width() int {
	switch f {
	case IPv4:
		return Width4
	case IPv6:
		return Width6
	}
	return 0
}

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (f Family) MarshalText() ([]byte, error) {
	if f.Width() == 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "%s", f)
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFamily accepts "4", "6", "ipv4", "ipv6", "v4" and "v6".
func ParseFamily(s string) (Family, error) {
	switch s {
	case "4", "v4", "ipv4", "IPv4":
		return IPv4, nil
	case "6", "v6", "ipv6", "IPv6":
		return IPv6, nil
	}
	return 0, errors.Wrapf(ErrInvalidInput, "unknown address family %q", s)
}

// TableVersion names the registry snapshot the default tables follow.
const TableVersion = "iana-special-registry-2024"

// ReservedTable lists the blocks of an address family that are never
// counted as public address space.
//
// Exceptions are globally reachable blocks nested inside Reserved, how
// they are treated is decided by the [ExceptionPolicy] of a [Query].
type ReservedTable struct {
	Family     Family   `json:"family" yaml:"family"`
	Version    string   `json:"version" yaml:"version"`
	Universe   Prefix   `json:"universe" yaml:"universe"`
	Reserved   []Prefix `json:"reserved" yaml:"reserved"`
	Exceptions []Prefix `json:"exceptions" yaml:"exceptions"`
}

// DefaultTable returns a copy of the built-in table for f.
func DefaultTable(f Family) (ReservedTable, error) {
	var tbl ReservedTable
	switch f {
	case IPv4:
		tbl = reserved4
	case IPv6:
		tbl = reserved6
	default:
		return ReservedTable{}, errors.Wrapf(ErrInvalidInput, "no reserved table for %s", f)
	}

	tbl.Reserved = slices.Clone(tbl.Reserved)
	tbl.Exceptions = slices.Clone(tbl.Exceptions)
	return tbl, nil
}

// Validate checks that all prefixes of the table use the width of its family.
func (t ReservedTable) Validate() error {
	w := t.Family.Width()
	if w == 0 {
		return errors.Wrapf(ErrInvalidInput, "table %q: %s", t.Version, t.Family)
	}
	if !t.Universe.IsValid() {
		return errors.Wrapf(ErrInvalidPrefix, "table %q: universe", t.Version)
	}
	if err := sameWidth(uint8(w), []Prefix{t.Universe}); err != nil {
		return errors.WithMessagef(err, "table %q: universe", t.Version)
	}
	if err := sameWidth(uint8(w), t.Reserved); err != nil {
		return errors.WithMessagef(err, "table %q: reserved", t.Version)
	}
	if err := sameWidth(uint8(w), t.Exceptions); err != nil {
		return errors.WithMessagef(err, "table %q: exceptions", t.Version)
	}
	return nil
}

// abbreviation
var mpp = MustParsePrefix

var reserved4 = ReservedTable{
	Family:   IPv4,
	Version:  TableVersion,
	Universe: mpp("0.0.0.0/0"),
	Reserved: []Prefix{
		mpp("100.64.0.0/10"), // shared address space
		mpp("224.0.0.0/4"),   // multicast

		// not globally reachable
		mpp("0.0.0.0/8"),
		mpp("10.0.0.0/8"),
		mpp("127.0.0.0/8"),
		mpp("169.254.0.0/16"),
		mpp("172.16.0.0/12"),
		mpp("192.0.0.0/24"),
		mpp("192.0.0.170/31"),
		mpp("192.0.2.0/24"),
		mpp("192.168.0.0/16"),
		mpp("198.18.0.0/15"),
		mpp("198.51.100.0/24"),
		mpp("203.0.113.0/24"),
		mpp("240.0.0.0/4"),
		mpp("255.255.255.255/32"),
	},
	Exceptions: []Prefix{
		mpp("192.0.0.9/32"),
		mpp("192.0.0.10/32"),
	},
}

var reserved6 = ReservedTable{
	Family:   IPv6,
	Version:  TableVersion,
	Universe: mpp("::/0"),
	Reserved: []Prefix{
		mpp("ff00::/8"), // multicast

		// not globally reachable
		mpp("::1/128"),
		mpp("::/128"),
		mpp("::ffff:0:0/96"),
		mpp("64:ff9b:1::/48"),
		mpp("100::/64"),
		mpp("2001::/23"),
		mpp("2001:db8::/32"),
		mpp("2002::/16"),
		mpp("3fff::/20"),
		mpp("fc00::/7"),
		mpp("fe80::/10"),
	},
	Exceptions: []Prefix{
		mpp("2001:1::1/128"),
		mpp("2001:1::2/128"),
		mpp("2001:3::/32"),
		mpp("2001:4:112::/48"),
		mpp("2001:20::/28"),
		mpp("2001:30::/28"),
	},
}
