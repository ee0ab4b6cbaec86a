package scene

import (
	"strconv"
	"strings"
)

// Version is a dotted numeric host plugin version such as "2.0.1". Non
// numeric suffixes ("4.2.1-beta") are ignored.
type Version struct {
	parts []int
	raw   string
}

// ParseVersion parses a version tag. An empty tag yields the zero Version,
// which compares lower than any released version.
func ParseVersion(s string) Version {
	v := Version{raw: strings.TrimSpace(s)}
	for _, field := range strings.Split(v.raw, ".") {
		digits := field
		if i := strings.IndexFunc(field, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
			digits = field[:i]
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			break
		}
		v.parts = append(v.parts, n)
		if len(digits) != len(field) {
			break
		}
	}
	return v
}

// IsZero reports whether no version was given.
func (v Version) IsZero() bool { return len(v.parts) == 0 }

// String returns the tag as given.
func (v Version) String() string { return v.raw }

// Compare returns -1, 0, or 1. Missing components count as zero, so
// "2" equals "2.0.0".
func (v Version) Compare(o Version) int {
	for i := range max(len(v.parts), len(o.parts)) {
		a, b := at(v.parts, i), at(o.parts, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v >= the version given as a tag.
func (v Version) AtLeast(tag string) bool {
	return v.Compare(ParseVersion(tag)) >= 0
}

func at(p []int, i int) int {
	if i < len(p) {
		return p[i]
	}
	return 0
}
