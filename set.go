// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"iter"
	"net/netip"
	"slices"

	"github.com/gaissmai/bart"
	"github.com/pkg/errors"
)

// Set is an immutable PrefixSet in canonical form: sorted by base and
// length, no element overlaps another and no two elements are siblings.
//
// A Set is safe for concurrent use. Membership queries are answered by a
// bart.Lite routing table built once at construction.
//
// The zero value is not usable, use [NewSet] or [EmptySet].
type Set struct {
	width uint8
	pfxs  []Prefix
	index *bart.Lite
}

// NewSet returns the collapsed set of pfxs. All prefixes must share
// the same width. An empty argument list needs [EmptySet] instead,
// since the width is unknown.
func NewSet(pfxs ...Prefix) (*Set, error) {
	if len(pfxs) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "empty set without width")
	}

	canonical, err := Collapse(pfxs)
	if err != nil {
		return nil, err
	}
	return newSet(pfxs[0].width, canonical), nil
}

// EmptySet returns the empty set of width 32 or 128.
func EmptySet(width int) (*Set, error) {
	if width != Width4 && width != Width6 {
		return nil, errors.Wrapf(ErrInvalidPrefix, "width %d", width)
	}
	return newSet(uint8(width), nil), nil
}

// newSet, canonical must already be collapsed.
func newSet(width uint8, canonical []Prefix) *Set {
	index := new(bart.Lite)
	for _, p := range canonical {
		index.Insert(p.Netip())
	}
	return &Set{width: width, pfxs: canonical, index: index}
}

// Width returns the address width of the set.
func (s *Set) Width() int { return int(s.width) }

// Len returns the number of prefixes in the set.
func (s *Set) Len() int { return len(s.pfxs) }

// Prefixes returns a copy of the sorted prefixes.
func (s *Set) Prefixes() []Prefix { return slices.Clone(s.pfxs) }

// All returns an iterator over the sorted prefixes.
func (s *Set) All() iter.Seq[Prefix] {
	return slices.Values(s.pfxs)
}

// Contains reports whether addr is covered by the set.
func (s *Set) Contains(addr netip.Addr) bool {
	if addr.Is4() != (s.width == Width4) {
		return false
	}
	return s.index.Contains(addr)
}

// ContainsPrefix reports whether p is completely covered by the set.
// In canonical form this means some element contains p.
func (s *Set) ContainsPrefix(p Prefix) bool {
	if p.width != s.width {
		return false
	}
	_, ok := s.index.LookupPrefix(p.Netip())
	return ok
}

// Overlaps reports whether s and o share any address.
func (s *Set) Overlaps(o *Set) bool {
	return s.width == o.width && s.index.Overlaps(o.index)
}

// Equal reports whether s and o cover the same addresses.
// Canonical form is unique, so this is element-wise equality.
func (s *Set) Equal(o *Set) bool {
	return s.width == o.width && slices.Equal(s.pfxs, o.pfxs)
}

// Union returns the set covering s and o.
func (s *Set) Union(o *Set) (*Set, error) {
	if err := s.checkWidth(o); err != nil {
		return nil, err
	}

	canonical, err := Collapse(slices.Concat(s.pfxs, o.pfxs))
	if err != nil {
		return nil, err
	}
	return newSet(s.width, canonical), nil
}

// Subtract returns the set covering s minus o.
func (s *Set) Subtract(o *Set) (*Set, error) {
	if err := s.checkWidth(o); err != nil {
		return nil, err
	}

	if !s.Overlaps(o) {
		return s, nil
	}

	var rest []Prefix
	for _, p := range s.pfxs {
		remain, err := Exclude(p, o.subnetsOf(p))
		if err != nil {
			return nil, err
		}
		rest = append(rest, remain...)
	}

	canonical, err := Collapse(rest)
	if err != nil {
		return nil, err
	}
	return newSet(s.width, canonical), nil
}

// Complement returns universe minus the set.
func (s *Set) Complement(universe Prefix) (*Set, error) {
	if !universe.IsValid() {
		return nil, errors.Wrap(ErrInvalidPrefix, "universe: zero value")
	}
	if universe.width != s.width {
		return nil, errors.Wrapf(ErrInvalidInput, "universe %s for set of width %d", universe, s.width)
	}

	remain, err := Exclude(universe, s.subnetsOf(universe))
	if err != nil {
		return nil, err
	}

	canonical, err := Collapse(remain)
	if err != nil {
		return nil, err
	}
	return newSet(s.width, canonical), nil
}

// subnetsOf returns the elements of s overlapping p, elements covering
// p are clipped to p.
func (s *Set) subnetsOf(p Prefix) []Prefix {
	var out []Prefix
	for _, q := range s.pfxs {
		switch {
		case q.Contains(p):
			return []Prefix{p}
		case p.Contains(q):
			out = append(out, q)
		}
	}
	return out
}

func (s *Set) checkWidth(o *Set) error {
	if s.width != o.width {
		return errors.Wrapf(ErrInvalidInput, "set widths %d and %d", s.width, o.width)
	}
	return nil
}
