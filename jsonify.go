// Copyright (c) 2024 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// setJSON is the wire form of a Set, the order of prefixes matters.
type setJSON struct {
	Width    int      `json:"width"`
	Prefixes []string `json:"prefixes"`
}

// MarshalJSON dumps the set as width and sorted list of CIDR strings.
//
//	{"width":32,"prefixes":["10.0.0.0/8","192.168.0.0/16"]}
func (s *Set) MarshalJSON() ([]byte, error) {
	cidrs := make([]string, 0, len(s.pfxs))
	for _, p := range s.pfxs {
		cidrs = append(cidrs, p.String())
	}

	return json.Marshal(setJSON{Width: int(s.width), Prefixes: cidrs})
}

// UnmarshalJSON restores a set, the prefixes are collapsed again and
// must match the width.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw setJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	empty, err := EmptySet(raw.Width)
	if err != nil {
		return err
	}
	if len(raw.Prefixes) == 0 {
		*s = *empty
		return nil
	}

	pfxs := make([]Prefix, 0, len(raw.Prefixes))
	for i, cidr := range raw.Prefixes {
		p, err := ParsePrefix(cidr)
		if err != nil {
			return errors.WithMessagef(err, "prefixes[%d]", i)
		}
		pfxs = append(pfxs, p)
	}

	if err := sameWidth(uint8(raw.Width), pfxs); err != nil {
		return err
	}

	set, err := NewSet(pfxs...)
	if err != nil {
		return err
	}

	*s = *set
	return nil
}
