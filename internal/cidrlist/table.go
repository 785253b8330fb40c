// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package cidrlist

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/routekit/pfxset"
)

// WriteTable writes a reserved table. In text format the reserved
// blocks are a readable CIDR list, all other fields are comments.
//
//	# ipv4 iana-special-registry-2024
//	# universe 0.0.0.0/0
//	100.64.0.0/10
//	...
//	# exception 192.0.0.9/32
func WriteTable(w io.Writer, tbl pfxset.ReservedTable, f Format) error {
	switch f {
	case FormatText, "":
		return writeTableText(w, tbl)

	case FormatJSON:
		data, err := json.Marshal(tbl)
		if err != nil {
			return errors.Wrap(err, "json")
		}
		_, err = w.Write(append(data, '\n'))
		return err

	case FormatYAML:
		data, err := yaml.Marshal(tbl)
		if err != nil {
			return errors.Wrap(err, "yaml")
		}
		_, err = w.Write(data)
		return err
	}

	return errors.Errorf("unknown output format %q", f)
}

func writeTableText(w io.Writer, tbl pfxset.ReservedTable) error {
	if _, err := fmt.Fprintf(w, "# %s %s\n# universe %s\n", tbl.Family, tbl.Version, tbl.Universe); err != nil {
		return err
	}
	for _, p := range tbl.Reserved {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	for _, p := range tbl.Exceptions {
		if _, err := fmt.Fprintf(w, "# exception %s\n", p); err != nil {
			return err
		}
	}
	return nil
}
