// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

// Package cidrlist reads and writes plain CIDR lists, the exchange
// format of the pfxset command.
//
// Input is one prefix per line, '#' starts a comment:
//
//	# customer ranges
//	192.0.2.0/24
//	2001:db8::/32   # lab
//	198.51.100.7    # bare address, becomes /32
package cidrlist

import (
	"bufio"
	"io"
	"net/netip"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/routekit/pfxset"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options control the parser.
type Options struct {
	// Lenient masks host bits instead of rejecting the line.
	Lenient bool
}

// Read parses a CIDR list. Errors carry the line number and wrap
// pfxset.ErrInvalidPrefix for malformed entries.
func Read(r io.Reader, opts Options) ([]pfxset.Prefix, error) {
	var out []pfxset.Prefix

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		p, err := parse(line, opts)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", n)
		}
		out = append(out, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading CIDR list")
	}
	return out, nil
}

// ReadFile is Read on the named file.
func ReadFile(name string, opts Options) ([]pfxset.Prefix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open CIDR list")
	}
	defer f.Close()

	pfxs, err := Read(f, opts)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return pfxs, nil
}

func parse(s string, opts Options) (pfxset.Prefix, error) {
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return pfxset.Prefix{}, errors.Wrap(pfxset.ErrInvalidPrefix, err.Error())
		}
		return pfxset.PrefixFrom(addr, addr.BitLen())
	}

	pfx, err := netip.ParsePrefix(s)
	if err != nil {
		return pfxset.Prefix{}, errors.Wrap(pfxset.ErrInvalidPrefix, err.Error())
	}
	if opts.Lenient {
		pfx = pfx.Masked()
	}
	return pfxset.PrefixFromNetip(pfx)
}

// FilterWidth splits pfxs into the prefixes of the given width and all
// others, the order within both parts is kept.
func FilterWidth(pfxs []pfxset.Prefix, width int) (match, other []pfxset.Prefix) {
	for _, p := range pfxs {
		if p.Width() == width {
			match = append(match, p)
		} else {
			other = append(other, p)
		}
	}
	return match, other
}

// Format of the written lists.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json and yaml, the empty string is text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q", s)
}

// setYAML is the YAML form of a set, same fields as the JSON form.
type setYAML struct {
	Width    int      `yaml:"width"`
	Prefixes []string `yaml:"prefixes"`
}

// Write writes the set in the given format. The text format is one
// CIDR per line and can be read back with Read.
func Write(w io.Writer, set *pfxset.Set, f Format) error {
	switch f {
	case FormatText, "":
		return set.Fprint(w)

	case FormatJSON:
		data, err := json.Marshal(set)
		if err != nil {
			return errors.Wrap(err, "json")
		}
		_, err = w.Write(append(data, '\n'))
		return err

	case FormatYAML:
		data, err := yaml.Marshal(toYAML(set))
		if err != nil {
			return errors.Wrap(err, "yaml")
		}
		_, err = w.Write(data)
		return err
	}

	return errors.Errorf("unknown output format %q", f)
}
