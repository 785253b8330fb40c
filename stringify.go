// Copyright (c) 2024 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// MarshalText implements the [encoding.TextMarshaler] interface,
// just a wrapper for [Set.Fprint].
func (s *Set) MarshalText() ([]byte, error) {
	w := new(bytes.Buffer)
	if err := s.Fprint(w); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// String returns the sorted CIDRs, one per line,
// just a wrapper for [Set.Fprint].
// If Fprint returns an error, String panics.
func (s *Set) String() string {
	w := new(strings.Builder)
	if err := s.Fprint(w); err != nil {
		panic(err)
	}

	return w.String()
}

// Fprint writes the sorted CIDRs of the set to w, one per line.
// If w is nil, Fprint panics.
//
//	1.0.0.0/8
//	2.0.0.0/7
//	4.0.0.0/6
//	...
func (s *Set) Fprint(w io.Writer) error {
	for _, p := range s.pfxs {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}

	return nil
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (p Prefix) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return []byte{}, nil
	}
	return p.Netip().MarshalText()
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface,
// the text must be a canonical CIDR.
func (p *Prefix) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = Prefix{}
		return nil
	}

	parsed, err := ParsePrefix(string(text))
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}
