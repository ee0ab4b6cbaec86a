package errors

import (
	"strings"
	"unicode"
)

const maxNodeIDLength = 256

// ValidateNodeID checks that a node identifier read from a scene dump can
// be used as a graph key and as a target node name.
//
// Identifiers must be non-empty, at most 256 bytes, and free of control
// characters. Namespaced identifiers such as "char:skin_mtl" are accepted.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains control characters", id)
		}
	}
	return nil
}

// ValidatePortName checks an attribute or port name. Ports may carry
// element and component selectors ("colorEntryList[2].color", "out.r")
// but never whitespace.
func ValidatePortName(port string) error {
	if port == "" {
		return New(ErrCodeInvalidInput, "port name cannot be empty")
	}
	if strings.IndexFunc(port, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return New(ErrCodeInvalidInput, "port name %q contains whitespace", port)
	}
	return nil
}

// ValidatePath checks a user-supplied output path.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
