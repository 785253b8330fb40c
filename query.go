// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var qlog = logrus.WithField("component", "pfxset.Query")

// ExceptionPolicy decides how the exceptions of a [ReservedTable] are
// treated when the complement is computed.
type ExceptionPolicy int

const (
	// ExceptionsExcluded removes the exceptions together with their
	// enclosing reserved block. This is the default for both families.
	ExceptionsExcluded ExceptionPolicy = iota

	// ExceptionsReincluded cuts the exceptions out of the reserved
	// blocks first, so they end up in the complement.
	ExceptionsReincluded
)

func (p ExceptionPolicy) String() string {
	switch p {
	case ExceptionsExcluded:
		return "excluded"
	case ExceptionsReincluded:
		return "reincluded"
	}
	return fmt.Sprintf("ExceptionPolicy(%d)", int(p))
}

// ParseExceptionPolicy is the inverse of String.
func ParseExceptionPolicy(s string) (ExceptionPolicy, error) {
	switch s {
	case "excluded", "":
		return ExceptionsExcluded, nil
	case "reincluded":
		return ExceptionsReincluded, nil
	}
	return 0, errors.Wrapf(ErrInvalidInput, "unknown exception policy %q", s)
}

// Query answers "what remains of the routable address space of a
// family after removing the reserved blocks and an in-scope set".
type Query struct {
	Table  ReservedTable
	Policy ExceptionPolicy

	// Workers > 1 enables ExcludeParallel.
	Workers int
}

// Result holds both halves of a query, they are disjoint.
type Result struct {
	InScope    *Set
	Complement *Set
}

// NewQuery returns a query with the default table of f.
func NewQuery(f Family) (Query, error) {
	tbl, err := DefaultTable(f)
	if err != nil {
		return Query{}, err
	}
	return Query{Table: tbl}, nil
}

// Complement runs a default query for f.
func Complement(f Family, inScope []Prefix) (Result, error) {
	q, err := NewQuery(f)
	if err != nil {
		return Result{}, err
	}
	return q.Run(inScope)
}

// Run computes
//
//	InScope    = collapse(inScope)
//	Complement = collapse(exclude(universe, collapse(reserved ++ InScope)))
//
// where reserved depends on the exception policy.
func (q Query) Run(inScope []Prefix) (Result, error) {
	if err := q.Table.Validate(); err != nil {
		return Result{}, err
	}

	width := uint8(q.Table.Family.Width())
	if err := sameWidth(width, inScope); err != nil {
		return Result{}, errors.WithMessagef(err, "in-scope %s", q.Table.Family)
	}

	collapsedScope, err := Collapse(inScope)
	if err != nil {
		return Result{}, err
	}

	reserved, err := q.reserved()
	if err != nil {
		return Result{}, err
	}

	excludes, err := Collapse(slices.Concat(reserved, collapsedScope))
	if err != nil {
		return Result{}, err
	}

	raw, err := ExcludeParallel(q.Table.Universe, excludes, q.Workers)
	if err != nil {
		return Result{}, err
	}

	complement, err := Collapse(raw)
	if err != nil {
		return Result{}, err
	}

	qlog.WithFields(logrus.Fields{
		"family":     q.Table.Family,
		"table":      q.Table.Version,
		"policy":     q.Policy,
		"inScope":    len(collapsedScope),
		"excludes":   len(excludes),
		"raw":        len(raw),
		"complement": len(complement),
	}).Debug("query done")

	return Result{
		InScope:    newSet(width, collapsedScope),
		Complement: newSet(width, complement),
	}, nil
}

// reserved returns the blocks always removed from the universe.
func (q Query) reserved() ([]Prefix, error) {
	switch q.Policy {
	case ExceptionsExcluded:
		return q.Table.Reserved, nil
	case ExceptionsReincluded:
		var out []Prefix
		for _, r := range q.Table.Reserved {
			rest, err := Exclude(r, q.Table.Exceptions)
			if err != nil {
				return nil, err
			}
			out = append(out, rest...)
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrInvalidInput, "%s", q.Policy)
}
