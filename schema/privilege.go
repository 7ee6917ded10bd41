package schema

import "fmt"

// Privilege is ordered: a higher privilege satisfies every lower one.
type Privilege int

const (
	Public Privilege = iota
	Operator
	Admin
)

func (p Privilege) String() string {
	switch p {
	case Admin:
		return "admin"
	case Operator:
		return "operator"
	default:
		return "public"
	}
}

// Roles holds the identities a component grants privileges to.
// Operator is optional.
type Roles struct {
	Admin    string
	Operator string
}

func (r Roles) Of(sender string) Privilege {
	switch {
	case sender != "" && sender == r.Admin:
		return Admin
	case sender != "" && sender == r.Operator:
		return Operator
	default:
		return Public
	}
}

// Require fails with ErrUnauthorized unless sender holds at least need.
func (r Roles) Require(sender string, need Privilege) error {
	if r.Of(sender) < need {
		return fmt.Errorf("%w: %s requires %s", ErrUnauthorized, sender, need)
	}
	return nil
}
