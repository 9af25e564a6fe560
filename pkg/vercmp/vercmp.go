// Package vercmp implements the version ordering used by pacman for
// MSYS2 package versions.  It is the rpm algorithm with the MSYS2
// convention that the epoch is separated by "~" instead of ":".
package vercmp

import "strings"

// Character classes of a version token.  Numeric tokens outrank
// alphabetic ones, separator runs outrank both.
const (
	classDigit = iota
	classAlpha
	classOther
)

func classOf(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return classDigit
	case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return classAlpha
	default:
		return classOther
	}
}

// tokenize splits a version segment into maximal runs of characters
// of the same class, walking left to right.
func tokenize(v string) []string {
	var parts []string
	start := 0
	for i := 1; i < len(v); i++ {
		if classOf(v[i]) != classOf(v[start]) {
			parts = append(parts, v[start:i])
			start = i
		}
	}
	if len(v) > 0 {
		parts = append(parts, v[start:])
	}
	return parts
}

// split breaks a full version string into epoch, upstream version and
// release.  The epoch defaults to "0"; the release is only present if
// the remainder contains a "-".
func split(v string) (epoch, ver, rel string, hasRel bool) {
	epoch = "0"
	if i := strings.Index(v, "~"); i >= 0 {
		epoch, v = v[:i], v[i+1:]
	}
	if i := strings.LastIndex(v, "-"); i >= 0 {
		return epoch, v[:i], v[i+1:], true
	}
	return epoch, v, "", false
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// cmpNumeric compares two runs of digits by integer value without
// converting them, so arbitrarily long version numbers are fine.
func cmpNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmpInt(len(a), len(b)); c != 0 {
		return c
	}
	return cmpString(a, b)
}

// cmpSegment is the rpmvercmp core, applied to one of the three
// version segments.
func cmpSegment(v1, v2 string) int {
	p1 := tokenize(v1)
	p2 := tokenize(v2)

	n := len(p1)
	if len(p2) > n {
		n = len(p2)
	}
	for i := 0; i < n; i++ {
		if i >= len(p1) {
			// "1.0" is newer than "1.0a", but older than "1.0.1"
			if classOf(p2[i][0]) == classAlpha {
				return 1
			}
			return -1
		}
		if i >= len(p2) {
			if classOf(p1[i][0]) == classAlpha {
				return -1
			}
			return 1
		}

		t1 := classOf(p1[i][0])
		t2 := classOf(p2[i][0])
		if t1 != t2 {
			switch {
			case t1 == classDigit:
				return 1
			case t2 == classDigit:
				return -1
			case t1 == classOther:
				return 1
			default:
				return -1
			}
		}

		var c int
		switch t1 {
		case classOther:
			c = cmpInt(len(p1[i]), len(p2[i]))
		case classDigit:
			c = cmpNumeric(p1[i], p2[i])
		default:
			c = cmpString(p1[i], p2[i])
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Compare orders two version strings and returns -1, 0 or 1.  It is
// total: malformed input yields a deterministic, if meaningless,
// ordering instead of an error.
func Compare(v1, v2 string) int {
	e1, u1, r1, hr1 := split(v1)
	e2, u2, r2, hr2 := split(v2)

	c := cmpSegment(e1, e2)
	if c != 0 {
		return c
	}
	c = cmpSegment(u1, u2)
	if c != 0 {
		return c
	}
	// the release only participates if both sides carry one
	if hr1 && hr2 {
		return cmpSegment(r1, r2)
	}
	return 0
}

// IsNewerThan reports whether v1 is strictly newer than v2.
func IsNewerThan(v1, v2 string) bool {
	return Compare(v1, v2) == 1
}
