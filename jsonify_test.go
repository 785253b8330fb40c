// Copyright (c) 2024 The pfxset Authors
// SPDX-License-Identifier: MIT

package pfxset

import (
	stdjson "encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jsonTest struct {
	cidrs []string
	width int
	want  string
}

func TestJsonEmpty(t *testing.T) {
	checkJson(t, jsonTest{
		width: Width4,
		want:  `{"width":32,"prefixes":[]}`,
	})
	checkJson(t, jsonTest{
		width: Width6,
		want:  `{"width":128,"prefixes":[]}`,
	})
}

func TestJsonDefaultRouteV4(t *testing.T) {
	checkJson(t, jsonTest{
		cidrs: []string{"0.0.0.0/0"},
		want:  `{"width":32,"prefixes":["0.0.0.0/0"]}`,
	})
}

func TestJsonDefaultRouteV6(t *testing.T) {
	checkJson(t, jsonTest{
		cidrs: []string{"::/0"},
		want:  `{"width":128,"prefixes":["::/0"]}`,
	})
}

func TestJsonSampleV4(t *testing.T) {
	checkJson(t, jsonTest{
		cidrs: []string{
			"172.16.0.0/12",
			"10.0.0.0/24",
			"192.168.0.0/16",
			"10.0.0.0/8",
			"10.0.1.0/24",
			"169.254.0.0/16",
			"127.0.0.0/8",
			"127.0.0.1/32",
			"192.168.1.0/24",
		},
		want: `{"width":32,"prefixes":["10.0.0.0/8","127.0.0.0/8","169.254.0.0/16","172.16.0.0/12","192.168.0.0/16"]}`,
	})
}

func TestJsonSampleV6(t *testing.T) {
	checkJson(t, jsonTest{
		cidrs: []string{
			"2001:db8::/33",
			"2001:db8:8000::/33",
			"fe80::/10",
		},
		want: `{"width":128,"prefixes":["2001:db8::/32","fe80::/10"]}`,
	})
}

// TestJsonStdlib, the output is the same with encoding/json
// and errors keep their cause.
func TestJsonStdlib(t *testing.T) {
	set := mustSet(t, mpps("10.0.0.0/8", "192.168.0.0/16")...)

	std, err := stdjson.Marshal(set)
	require.NoError(t, err)

	own, err := set.MarshalJSON()
	require.NoError(t, err)

	assert.JSONEq(t, string(std), string(own))
}

func TestUnmarshalJSON(t *testing.T) {
	var set Set
	require.NoError(t, stdjson.Unmarshal([]byte(`{"width":32,"prefixes":["10.128.0.0/9","10.0.0.0/9"]}`), &set))
	assert.Equal(t, mpps("10.0.0.0/8"), set.Prefixes())
	assert.True(t, set.Contains(mpa("10.1.2.3")), "index rebuilt")

	require.NoError(t, stdjson.Unmarshal([]byte(`{"width":128,"prefixes":[]}`), &set))
	assert.Equal(t, Width6, set.Width())
	assert.Equal(t, 0, set.Len())

	tests := []struct {
		name string
		data string
		want error
	}{
		{"bad width", `{"width":64,"prefixes":[]}`, ErrInvalidPrefix},
		{"mixed widths", `{"width":32,"prefixes":["10.0.0.0/8","::/0"]}`, ErrInvalidInput},
		{"width mismatch", `{"width":128,"prefixes":["10.0.0.0/8"]}`, ErrInvalidInput},
		{"host bits", `{"width":32,"prefixes":["10.0.0.1/8"]}`, ErrInvalidPrefix},
		{"empty cidr", `{"width":32,"prefixes":[""]}`, ErrInvalidPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Set
			require.ErrorIs(t, stdjson.Unmarshal([]byte(tt.data), &s), tt.want)
		})
	}
}

func checkJson(t *testing.T, tt jsonTest) {
	t.Helper()

	var set *Set
	if len(tt.cidrs) == 0 {
		set, _ = EmptySet(tt.width)
	} else {
		set = mustSet(t, mpps(tt.cidrs...)...)
	}

	jsonBuffer, err := set.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	if string(jsonBuffer) != tt.want {
		t.Errorf("JSON got:\n%s\nwant:\n%s", jsonBuffer, tt.want)
	}

	// and back again
	var back Set
	if err := back.UnmarshalJSON(jsonBuffer); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(set) {
		t.Errorf("JSON round trip, got %v, want %v", back.Prefixes(), set.Prefixes())
	}
}
