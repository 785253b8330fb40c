// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

// Command pfxset collapses, subtracts and complements CIDR lists.
//
//	pfxset collapse routes.txt
//	pfxset exclude --universe 10.0.0.0/8 used.txt
//	pfxset complement --family 4 customers.txt
//	pfxset table --family 6 --format yaml
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	envPrefix         = "PFXSET"
	defaultConfigName = ".pfxset"
)

type options struct {
	cfgFile  string
	logLevel string
	format   string
	workers  int
	lenient  bool

	universe      string
	family        string
	policy        string
	inScopeOut    string
	complementOut string
	metricsFile   string
}

// runner carries the state of one invocation.
type runner struct {
	opts  options
	clock clock.Clock
}

func newRunner(clk clock.Clock) *runner {
	return &runner{clock: clk}
}

func newRootCmd(r *runner) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pfxset",
		Short:         "Exact set algebra on IPv4 and IPv6 CIDR lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.initConfig(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&r.opts.cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s.yaml)", defaultConfigName))
	pf.StringVar(&r.opts.logLevel, "log-level", "warning", "Log level: debug, info, warning, error")
	pf.StringVar(&r.opts.format, "format", "text", "Output format: text, json, yaml")
	pf.IntVar(&r.opts.workers, "workers", runtime.GOMAXPROCS(0), "Goroutines for the exclusion, 1 disables parallelism")
	pf.BoolVar(&r.opts.lenient, "lenient", false, "Mask host bits in the input instead of failing")

	rootCmd.AddCommand(
		r.collapseCmd(),
		r.excludeCmd(),
		r.complementCmd(),
		r.tableCmd(),
	)
	return rootCmd
}

// initConfig use config file and ENV variables if set.
func (r *runner) initConfig(cmd *cobra.Command) error {
	v := viper.New()

	if r.opts.cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(r.opts.cfgFile)
	} else {
		// Search config in home directory with name ".pfxset" (without extension).
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(defaultConfigName)
	}

	// Read environment variables that match prefix
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfgErr := v.ReadInConfig()

	if err := bindFlags(cmd, v); err != nil {
		return err
	}

	// initialize logger
	initLogger(r.opts.logLevel)

	if cfgErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if r.opts.cfgFile == "" && errors.As(cfgErr, &notFound) {
			log.Debugf("no config file: %v", cfgErr)
			return nil
		}
		return errors.Wrap(cfgErr, "read config")
	}
	log.Debugf("using config file %s", v.ConfigFileUsed())
	return nil
}

func initLogger(logLevel string) {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.WarnLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

// bindFlags applies the viper value to every flag the user did not set.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
			bindErr = errors.Wrapf(err, "config value for --%s", f.Name)
		}
	})
	return bindErr
}

func main() {
	if err := newRootCmd(newRunner(clock.New())).Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
