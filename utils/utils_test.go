package utils

import (
	"math"
	"strings"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	var tests = []struct {
		in  float32
		out string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2, "-2.0"},
		{-0.892934, "-0.892934"},
		{0.0463828, "0.0463828"},
		{1.18061, "1.18061"},
		{1e-10, "1e-10"},
		{1e-5, "1e-05"},
		{0.0001, "0.0001"},
		{1e6, "1000000.0"},
		{1234567, "1234567.0"},
		{-1234.5, "-1234.5"},
		{16777215, "16777215.0"},
		{16777216, "1.6777216e+07"},
		{float32(math.Inf(1)), "+Inf"},
	}
	for _, test := range tests {
		if s := FormatFloat(test.in); s != test.out {
			t.Errorf("FormatFloat(%v)=%q; expected %q", test.in, s, test.out)
		}
	}
}

func TestBytesToString(t *testing.T) {
	var tests = []struct {
		in  []byte
		out string
	}{
		{[]byte("solid sphere\x00\x00\x00"), "solid sphere"},
		{[]byte("  padded header    "), "padded header"},
		{[]byte{'c', 'a', 'f', 0xe9}, "café"},
		{[]byte{}, ""},
	}
	for _, test := range tests {
		s, err := BytesToString(test.in)
		if err != nil {
			t.Errorf("BytesToString(%q) error: %v", test.in, err)
		} else if s != test.out {
			t.Errorf("BytesToString(%q)=%q; expected %q", test.in, s, test.out)
		}
	}
}

func TestRandomNameGenerator(t *testing.T) {
	var a, b RandomNameGenerator
	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		na, nb := a.RandomName(), b.RandomName()
		if na != nb {
			t.Errorf("Name %d differs between generators: %q vs %q", i, na, nb)
		}
		if seen[na] {
			t.Errorf("Duplicate name %q", na)
		}
		seen[na] = true
	}
}

func TestSDump(t *testing.T) {
	type pair struct{ A, B int }
	if s := SDump(pair{1, 2}); !strings.Contains(s, "A: (int) 1") {
		t.Errorf("SDump()=%q", s)
	}
}
