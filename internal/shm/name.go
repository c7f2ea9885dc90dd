package shm

import (
	"fmt"
	"strings"
)

// MaxNameLen is the longest object name accepted, excluding the leading slash.
const MaxNameLen = 255

// ValidateName checks that name is a legal shared-memory object name.
func ValidateName(name string) error {
	switch {
	case len(name) < 2 || name[0] != '/':
		return fmt.Errorf("%w: %q must start with a single '/'", ErrNameInvalid, name)
	case strings.ContainsAny(name[1:], "/\x00"):
		return fmt.Errorf("%w: %q contains a separator", ErrNameInvalid, name)
	case len(name)-1 > MaxNameLen:
		return fmt.Errorf("%w: length %d exceeds %d", ErrNameInvalid, len(name)-1, MaxNameLen)
	case name == "/." || name == "/..":
		return fmt.Errorf("%w: %q", ErrNameInvalid, name)
	}
	return nil
}
