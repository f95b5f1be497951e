// Package gate decides what a protected view does for the current session.
package gate

import "github.com/geocoder89/timehub/internal/domain/profile"

const LoginPath = "/login"

type Kind int

const (
	Pending Kind = iota
	RenderError
	Redirect
	Render
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case RenderError:
		return "error"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

type Input struct {
	Loading     bool
	Err         error
	HasIdentity bool
	Role        profile.Role
	// Required is RoleNone when any signed-in user may view.
	Required profile.Role
}

type Decision struct {
	Kind Kind
	// Location is set only for Redirect.
	Location string
	// Err is set only for RenderError.
	Err error
}

// Decide is evaluated fresh on every render; it holds no state.
func Decide(in Input) Decision {
	switch {
	case in.Loading:
		return Decision{Kind: Pending}
	case in.Err != nil:
		return Decision{Kind: RenderError, Err: in.Err}
	case !in.HasIdentity:
		return Decision{Kind: Redirect, Location: LoginPath}
	case in.Required == profile.RoleNone:
		return Decision{Kind: Render}
	case in.Role == in.Required:
		return Decision{Kind: Render}
	default:
		return Decision{Kind: Redirect, Location: in.Role.Home()}
	}
}
