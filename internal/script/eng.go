// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package script

import (
	"strconv"
	"strings"
)

// engSuffixes maps engineering-notation suffixes to powers of ten.
// Both k and K mean kilo; the rest follow SI.
var engSuffixes = map[byte]int{
	'y': -24,
	'z': -21,
	'a': -18,
	'f': -15,
	'p': -12,
	'n': -9,
	'u': -6,
	'm': -3,
	'k': 3,
	'K': 3,
	'M': 6,
	'G': 9,
	'T': 12,
	'P': 15,
	'E': 18,
	'Z': 21,
	'Y': 24,
}

// ParseEng parses a number with an engineering suffix, like 10k or
// 2.5M. The second return is false when s is not in that form.
func ParseEng(s string) (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}
	exp, ok := engSuffixes[s[len(s)-1]]
	if !ok {
		return 0, false
	}
	mantissa := s[:len(s)-1]
	// Reject things like 1e3k; the mantissa must be a plain number.
	if strings.ContainsAny(mantissa, "eE") {
		return 0, false
	}
	f, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return 0, false
	}
	p := 1.0
	if exp > 0 {
		for i := 0; i < exp; i++ {
			p *= 10
		}
	} else {
		for i := 0; i > exp; i-- {
			p /= 10
		}
	}
	return f * p, true
}
