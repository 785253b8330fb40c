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

type resultJSON struct {
	Family     string      `json:"family"`
	InScope    *pfxset.Set `json:"inScope"`
	Complement *pfxset.Set `json:"complement"`
}

type resultYAML struct {
	Family     string  `yaml:"family"`
	InScope    setYAML `yaml:"inScope"`
	Complement setYAML `yaml:"complement"`
}

// WriteResult writes both halves of a query as one document. The text
// format separates them with comment headers:
//
//	# in-scope ipv4
//	192.0.2.0/24
//	# complement ipv4
//	1.0.0.0/8
//	...
func WriteResult(w io.Writer, f pfxset.Family, res pfxset.Result, format Format) error {
	switch format {
	case FormatText, "":
		if _, err := fmt.Fprintf(w, "# in-scope %s\n", f); err != nil {
			return err
		}
		if err := res.InScope.Fprint(w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "# complement %s\n", f); err != nil {
			return err
		}
		return res.Complement.Fprint(w)

	case FormatJSON:
		data, err := json.Marshal(resultJSON{Family: f.String(), InScope: res.InScope, Complement: res.Complement})
		if err != nil {
			return errors.Wrap(err, "json")
		}
		_, err = w.Write(append(data, '\n'))
		return err

	case FormatYAML:
		data, err := yaml.Marshal(resultYAML{Family: f.String(), InScope: toYAML(res.InScope), Complement: toYAML(res.Complement)})
		if err != nil {
			return errors.Wrap(err, "yaml")
		}
		_, err = w.Write(data)
		return err
	}

	return errors.Errorf("unknown output format %q", format)
}

func toYAML(set *pfxset.Set) setYAML {
	doc := setYAML{Width: set.Width(), Prefixes: []string{}}
	for p := range set.All() {
		doc.Prefixes = append(doc.Prefixes, p.String())
	}
	return doc
}
