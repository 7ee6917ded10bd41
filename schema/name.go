package schema

import "fmt"

const MaxNameLength = 255

// ValidateName accepts 1 to 255 bytes of lowercase ascii letters, digits
// and '-'.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLength {
		return fmt.Errorf("%w: length %d", ErrInvalidName, len(name))
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
