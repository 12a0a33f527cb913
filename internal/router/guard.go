package router

// Meta classifies a route for the guard.
type Meta struct {
	RequiresAuth bool
	GuestOnly    bool
}

// Decision is the outcome of the guard for one navigation.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToHome:
		return "redirect-to-home"
	default:
		return "allow"
	}
}

// Guard decides whether a navigation to a route with meta may proceed.
func Guard(meta Meta, authenticated bool) Decision {
	if meta.RequiresAuth && !authenticated {
		return RedirectToLogin
	}
	if meta.GuestOnly && authenticated {
		return RedirectToHome
	}
	return Allow
}
