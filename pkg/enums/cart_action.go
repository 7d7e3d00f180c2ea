package enums

import "fmt"

// CartAction names the supported quantity adjustments on a cart line.
type CartAction string

const (
	CartActionIncrease CartAction = "increase"
	CartActionDecrease CartAction = "decrease"
	CartActionSet      CartAction = "set"
)

var validCartActions = []CartAction{
	CartActionIncrease,
	CartActionDecrease,
	CartActionSet,
}

// String implements fmt.Stringer.
func (a CartAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known CartAction.
func (a CartAction) IsValid() bool {
	for _, candidate := range validCartActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseCartAction converts raw input into a CartAction.
func ParseCartAction(value string) (CartAction, error) {
	for _, candidate := range validCartActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart action %q", value)
}
