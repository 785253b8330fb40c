// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import "github.com/pkg/errors"

var (
	// ErrInvalidPrefix is returned for a malformed base/length/width combination.
	ErrInvalidPrefix = errors.New("invalid prefix")

	// ErrInvalidInput is returned when an operation is called with
	// prefixes of different bit widths.
	ErrInvalidInput = errors.New("invalid input")
)

// sameWidth checks that all pfxs are valid and share width w.
func sameWidth(w uint8, pfxs []Prefix) error {
	for i, p := range pfxs {
		if !p.IsValid() {
			return errors.Wrapf(ErrInvalidPrefix, "element %d: zero value", i)
		}
		if p.width != w {
			return errors.Wrapf(ErrInvalidInput, "element %d: %s has width %d, want %d", i, p, p.width, w)
		}
	}
	return nil
}
