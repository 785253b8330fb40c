// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"os"
	"slices"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/routekit/pfxset"
	"github.com/routekit/pfxset/internal/cidrlist"
	"github.com/routekit/pfxset/internal/metrics"
)

func (r *runner) collapseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collapse [FILE...]",
		Short: "Print the minimal cover of the CIDR lists, per address family",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cidrlist.ParseFormat(r.opts.format)
			if err != nil {
				return err
			}

			pfxs, err := r.readInputs(cmd, args)
			if err != nil {
				return err
			}

			v4, v6 := cidrlist.FilterWidth(pfxs, pfxset.Width4)

			var sets []*pfxset.Set
			for _, part := range [][]pfxset.Prefix{v4, v6} {
				if len(part) == 0 {
					continue
				}
				set, err := pfxset.NewSet(part...)
				if err != nil {
					return err
				}
				log.WithFields(log.Fields{"width": set.Width(), "in": len(part), "out": set.Len()}).Info("collapsed")
				sets = append(sets, set)
			}

			return writeSets(cmd.OutOrStdout(), sets, format)
		},
	}
}

func (r *runner) excludeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclude --universe CIDR [FILE...]",
		Short: "Print the universe minus the CIDR lists, collapsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cidrlist.ParseFormat(r.opts.format)
			if err != nil {
				return err
			}

			universe, err := pfxset.ParsePrefix(r.opts.universe)
			if err != nil {
				return errors.WithMessage(err, "--universe")
			}

			excludes, err := r.readInputs(cmd, args)
			if err != nil {
				return err
			}

			start := r.clock.Now()
			raw, err := pfxset.ExcludeParallel(universe, excludes, r.opts.workers)
			if err != nil {
				return err
			}
			set, err := newSetOrEmpty(universe.Width(), raw)
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"universe": universe,
				"excludes": len(excludes),
				"raw":      len(raw),
				"out":      set.Len(),
				"took":     r.clock.Since(start),
			}).Info("excluded")

			return cidrlist.Write(cmd.OutOrStdout(), set, format)
		},
	}

	cmd.Flags().StringVar(&r.opts.universe, "universe", "", "Universe prefix, e.g. 0.0.0.0/0")
	_ = cmd.MarkFlagRequired("universe")
	return cmd
}

func (r *runner) complementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complement --family 4|6 [FILE...]",
		Short: "Print the routable address space not covered by the reserved table and the CIDR lists",
		Long: `Print the in-scope prefixes and the complement: the universe of the
family minus the reserved table and the in-scope prefixes.

Prefixes of the other address family in the input are skipped with a warning.

Metrics written with --metrics-file:
` + metrics.Documentation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := metrics.New()
			err := r.complement(cmd, args, m)
			m.CountRun("complement", err)

			if r.opts.metricsFile != "" {
				if mErr := m.WriteTextfile(r.opts.metricsFile); mErr != nil {
					if err != nil {
						return err
					}
					return mErr
				}
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&r.opts.family, "family", "4", "Address family: 4 or 6")
	f.StringVar(&r.opts.policy, "policy", pfxset.ExceptionsExcluded.String(), "Exceptions of the reserved table: excluded or reincluded")
	f.StringVar(&r.opts.inScopeOut, "in-scope-out", "", "Write the in-scope set to this file instead of stdout")
	f.StringVar(&r.opts.complementOut, "complement-out", "", "Write the complement to this file instead of stdout")
	f.StringVar(&r.opts.metricsFile, "metrics-file", "", "Write prometheus metrics in text format to this file")
	return cmd
}

func (r *runner) complement(cmd *cobra.Command, args []string, m *metrics.Metrics) error {
	format, err := cidrlist.ParseFormat(r.opts.format)
	if err != nil {
		return err
	}
	family, err := pfxset.ParseFamily(r.opts.family)
	if err != nil {
		return err
	}
	policy, err := pfxset.ParseExceptionPolicy(r.opts.policy)
	if err != nil {
		return err
	}

	q, err := pfxset.NewQuery(family)
	if err != nil {
		return err
	}
	q.Policy = policy
	q.Workers = r.opts.workers

	start := r.clock.Now()
	pfxs, err := r.readInputs(cmd, args)
	if err != nil {
		return err
	}
	inScope, other := cidrlist.FilterWidth(pfxs, family.Width())
	if len(other) != 0 {
		log.WithFields(log.Fields{"family": family, "skipped": len(other)}).Warn("input contains prefixes of the other address family")
	}
	m.ObservePhase("read", r.clock.Since(start))

	start = r.clock.Now()
	res, err := q.Run(inScope)
	if err != nil {
		return err
	}
	m.ObservePhase("query", r.clock.Since(start))

	fam := family.String()
	m.SetPrefixes(fam, "input", len(inScope))
	m.SetPrefixes(fam, "skipped", len(other))
	m.SetPrefixes(fam, "reserved", len(q.Table.Reserved))
	m.SetPrefixes(fam, "in_scope", res.InScope.Len())
	m.SetPrefixes(fam, "complement", res.Complement.Len())

	log.WithFields(log.Fields{
		"family":     family,
		"policy":     policy,
		"inScope":    res.InScope.Len(),
		"complement": res.Complement.Len(),
	}).Info("complement done")

	start = r.clock.Now()
	defer func() { m.ObservePhase("write", r.clock.Since(start)) }()

	if r.opts.inScopeOut == "" && r.opts.complementOut == "" {
		return cidrlist.WriteResult(cmd.OutOrStdout(), family, res, format)
	}

	for _, out := range []struct {
		path string
		set  *pfxset.Set
	}{
		{r.opts.inScopeOut, res.InScope},
		{r.opts.complementOut, res.Complement},
	} {
		if out.path == "" {
			if err := cidrlist.Write(cmd.OutOrStdout(), out.set, format); err != nil {
				return err
			}
			continue
		}
		if err := writeFile(out.path, out.set, format); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table --family 4|6",
		Short: "Print the built-in reserved table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cidrlist.ParseFormat(r.opts.format)
			if err != nil {
				return err
			}
			family, err := pfxset.ParseFamily(r.opts.family)
			if err != nil {
				return err
			}
			tbl, err := pfxset.DefaultTable(family)
			if err != nil {
				return err
			}
			return cidrlist.WriteTable(cmd.OutOrStdout(), tbl, format)
		},
	}

	cmd.Flags().StringVar(&r.opts.family, "family", "4", "Address family: 4 or 6")
	return cmd
}

// readInputs reads all named CIDR lists, or stdin if there are none.
// The name "-" is stdin as well.
func (r *runner) readInputs(cmd *cobra.Command, args []string) ([]pfxset.Prefix, error) {
	opts := cidrlist.Options{Lenient: r.opts.lenient}

	if len(args) == 0 {
		args = []string{"-"}
	}

	var all []pfxset.Prefix
	for _, name := range args {
		var (
			pfxs []pfxset.Prefix
			err  error
		)
		if name == "-" {
			pfxs, err = cidrlist.Read(cmd.InOrStdin(), opts)
			err = errors.WithMessage(err, "stdin")
		} else {
			pfxs, err = cidrlist.ReadFile(name, opts)
		}
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"input": name, "prefixes": len(pfxs)}).Debug("read")
		all = slices.Concat(all, pfxs)
	}
	return all, nil
}

func newSetOrEmpty(width int, pfxs []pfxset.Prefix) (*pfxset.Set, error) {
	if len(pfxs) == 0 {
		return pfxset.EmptySet(width)
	}
	return pfxset.NewSet(pfxs...)
}

// writeSets writes several sets, YAML documents are separated by "---".
func writeSets(w io.Writer, sets []*pfxset.Set, format cidrlist.Format) error {
	for i, set := range sets {
		if i > 0 && format == cidrlist.FormatYAML {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if err := cidrlist.Write(w, set, format); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, set *pfxset.Set, format cidrlist.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := cidrlist.Write(f, set, format); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
