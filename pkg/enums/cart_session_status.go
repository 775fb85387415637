package enums

import "fmt"

// CartSessionStatus tracks the lifecycle of a cart session.
type CartSessionStatus string

const (
	CartSessionStatusActive  CartSessionStatus = "active"
	CartSessionStatusMerged  CartSessionStatus = "merged"
	CartSessionStatusExpired CartSessionStatus = "expired"
)

var validCartSessionStatuses = []CartSessionStatus{
	CartSessionStatusActive,
	CartSessionStatusMerged,
	CartSessionStatusExpired,
}

// String implements fmt.Stringer.
func (c CartSessionStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartSessionStatus.
func (c CartSessionStatus) IsValid() bool {
	for _, candidate := range validCartSessionStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartSessionStatus converts raw input into a CartSessionStatus.
func ParseCartSessionStatus(value string) (CartSessionStatus, error) {
	for _, candidate := range validCartSessionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart session status %q", value)
}
