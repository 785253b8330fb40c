// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/routekit/pfxset"
	"github.com/routekit/pfxset/internal/cidrlist"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// execute runs the command line with stdin and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd(newRunner(clock.NewMock()))

	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCollapseStdin(t *testing.T) {
	out, err := execute(t, "10.0.0.0/9\n2001:db8:8000::/33\n10.128.0.0/9\n2001:db8::/33\n", "collapse")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8\n2001:db8::/32\n", out)
}

func TestCollapseFiles(t *testing.T) {
	a := writeTemp(t, "a.txt", "# first half\n10.0.0.0/9\n")
	b := writeTemp(t, "b.txt", "10.128.0.0/9\n10.1.0.0/16\n")

	out, err := execute(t, "", "collapse", a, b)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8\n", out)
}

func TestCollapseYAMLDocuments(t *testing.T) {
	out, err := execute(t, "10.0.0.0/8\n2001:db8::/32\n", "collapse", "--format", "yaml")
	require.NoError(t, err)

	docs := strings.Split(out, "---\n")
	require.Len(t, docs, 2)

	var doc struct {
		Width    int      `yaml:"width"`
		Prefixes []string `yaml:"prefixes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(docs[0]), &doc))
	assert.Equal(t, 32, doc.Width)
	assert.Equal(t, []string{"10.0.0.0/8"}, doc.Prefixes)

	require.NoError(t, yaml.Unmarshal([]byte(docs[1]), &doc))
	assert.Equal(t, 128, doc.Width)
	assert.Equal(t, []string{"2001:db8::/32"}, doc.Prefixes)
}

func TestExclude(t *testing.T) {
	out, err := execute(t, "10.0.0.0/8\n", "exclude", "--universe", "0.0.0.0/0", "--workers", "4")
	require.NoError(t, err)

	want := strings.Join([]string{
		"0.0.0.0/5",
		"8.0.0.0/7",
		"11.0.0.0/8",
		"12.0.0.0/6",
		"16.0.0.0/4",
		"32.0.0.0/3",
		"64.0.0.0/2",
		"128.0.0.0/1",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestExcludeEverything(t *testing.T) {
	out, err := execute(t, "0.0.0.0/0\n", "exclude", "--universe", "10.0.0.0/8", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":32,"prefixes":[]}`, out)
}

func TestExcludeErrors(t *testing.T) {
	_, err := execute(t, "10.0.0.1/8\n", "exclude", "--universe", "0.0.0.0/0")
	require.ErrorIs(t, err, pfxset.ErrInvalidPrefix)

	// lenient input masks host bits
	out, err := execute(t, "10.0.0.1/8\n", "exclude", "--universe", "10.0.0.0/7", "--lenient")
	require.NoError(t, err)
	assert.Equal(t, "11.0.0.0/8\n", out)

	_, err = execute(t, "2001:db8::/32\n", "exclude", "--universe", "0.0.0.0/0")
	require.ErrorIs(t, err, pfxset.ErrInvalidInput)

	_, err = execute(t, "", "exclude", "--universe", "10.0.0.1/8")
	require.ErrorIs(t, err, pfxset.ErrInvalidPrefix)

	_, err = execute(t, "", "exclude")
	require.Error(t, err, "missing --universe")

	_, err = execute(t, "", "exclude", "--universe", "0.0.0.0/0", "--format", "xml")
	require.Error(t, err)
}

func TestComplementStdout(t *testing.T) {
	out, err := execute(t, "1.0.0.0/8\n2001:db8::/32\n", "complement", "--family", "4")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "# in-scope ipv4\n1.0.0.0/8\n# complement ipv4\n"), out)

	pfxs, err := cidrlist.Read(strings.NewReader(out), cidrlist.Options{})
	require.NoError(t, err)

	want, err := pfxset.Complement(pfxset.IPv4, []pfxset.Prefix{pfxset.MustParsePrefix("1.0.0.0/8")})
	require.NoError(t, err)
	assert.Equal(t, append(want.InScope.Prefixes(), want.Complement.Prefixes()...), pfxs)
}

func TestComplementFiles(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, "in.txt", "2a00::/12\n")
	inScopeOut := filepath.Join(dir, "in-scope.txt")
	complementOut := filepath.Join(dir, "complement.txt")
	metricsFile := filepath.Join(dir, "pfxset.prom")

	out, err := execute(t, "", "complement",
		"--family", "6",
		"--policy", "reincluded",
		"--in-scope-out", inScopeOut,
		"--complement-out", complementOut,
		"--metrics-file", metricsFile,
		in)
	require.NoError(t, err)
	assert.Empty(t, out)

	scope, err := cidrlist.ReadFile(inScopeOut, cidrlist.Options{})
	require.NoError(t, err)
	assert.Equal(t, []pfxset.Prefix{pfxset.MustParsePrefix("2a00::/12")}, scope)

	compl, err := cidrlist.ReadFile(complementOut, cidrlist.Options{})
	require.NoError(t, err)
	set, err := pfxset.NewSet(compl...)
	require.NoError(t, err)
	assert.True(t, set.ContainsPrefix(pfxset.MustParsePrefix("2001:3::/32")), "exception reincluded")
	assert.False(t, set.Contains(pfxset.MustParsePrefix("2a01::/16").Addr()))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `pfxset_prefixes{family="ipv6",set="in_scope"} 1`)
	assert.Contains(t, string(prom), `pfxset_runs_total{command="complement",result="ok"} 1`)
	assert.Contains(t, string(prom), `pfxset_phase_duration_seconds{phase="query"} 0`)
}

func TestComplementOneFile(t *testing.T) {
	complementOut := filepath.Join(t.TempDir(), "complement.txt")

	out, err := execute(t, "8.8.8.0/24\n", "complement", "--complement-out", complementOut)
	require.NoError(t, err)
	assert.Equal(t, "8.8.8.0/24\n", out, "in-scope to stdout")

	_, err = os.Stat(complementOut)
	require.NoError(t, err)
}

func TestComplementErrors(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "pfxset.prom")

	_, err := execute(t, "", "complement", "--family", "5")
	require.ErrorIs(t, err, pfxset.ErrInvalidInput)

	_, err = execute(t, "", "complement", "--policy", "sometimes", "--metrics-file", metricsFile)
	require.ErrorIs(t, err, pfxset.ErrInvalidInput)

	// failed runs are counted as well
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `pfxset_runs_total{command="complement",result="error"} 1`)
}

func TestTable(t *testing.T) {
	out, err := execute(t, "", "table", "--family", "6", "--format", "json")
	require.NoError(t, err)

	var tbl pfxset.ReservedTable
	require.NoError(t, json.Unmarshal([]byte(out), &tbl))

	want, err := pfxset.DefaultTable(pfxset.IPv6)
	require.NoError(t, err)
	assert.Equal(t, want, tbl)

	out, err = execute(t, "", "table")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# ipv4 "+pfxset.TableVersion+"\n"))
}

func TestEnvBinding(t *testing.T) {
	t.Setenv("PFXSET_FORMAT", "json")

	out, err := execute(t, "10.0.0.0/8\n", "collapse")
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":32,"prefixes":["10.0.0.0/8"]}`, out)

	// flags win over env
	out, err = execute(t, "10.0.0.0/8\n", "collapse", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8\n", out)
}

func TestConfigFile(t *testing.T) {
	cfg := writeTemp(t, "pfxset.yaml", "format: yaml\nlog-level: error\n")

	out, err := execute(t, "10.0.0.0/8\n", "--config", cfg, "collapse")
	require.NoError(t, err)

	var doc struct {
		Width    int      `yaml:"width"`
		Prefixes []string `yaml:"prefixes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 32, doc.Width)
	assert.Equal(t, []string{"10.0.0.0/8"}, doc.Prefixes)

	_, err = execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "collapse")
	require.Error(t, err, "explicit config must exist")
}
