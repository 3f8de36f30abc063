package utils

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/mogaika/meshprobe/config"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"
)

// BytesToString decodes zero terminated (or padded) text with current
// config encoding
func BytesToString(bs []byte) (string, error) {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		return "", errors.Wrapf(err, "Failed to decode string")
	}
	return strings.TrimSpace(string(s)), nil
}

// FormatFloat prints shortest representation of f that always has
// fractional part or exponent, like 0.0, 1.0, -0.892934, 1000000.0.
// Exponent form is used below 1e-4 and from 2^24 on.
func FormatFloat(f float32) string {
	abs := math.Abs(float64(f))
	format := byte('g')
	if abs == 0 || (abs >= 1e-4 && abs < 1<<24) {
		format = 'f'
	}
	s := strconv.FormatFloat(float64(f), format, -1, 32)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}
