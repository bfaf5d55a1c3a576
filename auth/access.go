package auth

import (
	"errors"
	"strconv"
)

// MeAlias in an ownership parameter stands for the caller's own id.
const MeAlias = "me"

var (
	// ErrUnauthenticated means no usable credential was presented.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller is known but not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidOwnerRef means the ownership parameter is neither "me" nor an id.
	ErrInvalidOwnerRef = errors.New("invalid resource owner reference")
)

// RouteAccess is the authorization metadata attached to a route when it is
// registered. The zero value describes an authenticated route with no role
// or ownership requirement.
type RouteAccess struct {
	Public     bool
	Roles      []Role
	OwnerParam string
}

// Public marks a route as reachable without credentials.
func Public() RouteAccess { return RouteAccess{Public: true} }

// Roles requires the caller to hold at least one of roles.
func Roles(roles ...Role) RouteAccess { return RouteAccess{Roles: roles} }

// OwnedBy adds an ownership check on the named path parameter.
func (a RouteAccess) OwnedBy(param string) RouteAccess {
	a.OwnerParam = param
	return a
}

// SessionState says what the resolver found on the request.
type SessionState int

const (
	// Anonymous: no credential was presented.
	Anonymous SessionState = iota
	// Unauthenticated: a credential was presented and rejected.
	Unauthenticated
	// Authenticated: a credential was verified.
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the resolver's verdict for one request.
type Session struct {
	State     SessionState
	Principal *Principal
}

// AccessPolicy holds the deployment-level decisions of the engine.
type AccessPolicy struct {
	// AdminBypassOwnership exempts ADMIN principals from the ownership gate.
	AdminBypassOwnership bool
}

// Decision is the engine's verdict. OwnerID is set when an ownership
// parameter was resolved, including the "me" alias.
type Decision struct {
	Err     error
	OwnerID int64
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Err == nil }

// Decide evaluates the gates in order: public bypass, authentication,
// role, ownership. ownerValue is the raw value of access.OwnerParam taken
// from the request and is ignored when the route declares no owner param.
func (p AccessPolicy) Decide(access RouteAccess, session Session, ownerValue string) Decision {
	if access.Public {
		return Decision{}
	}

	if session.State != Authenticated || session.Principal == nil {
		return Decision{Err: ErrUnauthenticated}
	}
	principal := session.Principal

	if len(access.Roles) > 0 && !principal.HasAnyRole(access.Roles...) {
		return Decision{Err: ErrForbidden}
	}

	if access.OwnerParam == "" {
		return Decision{}
	}

	ownerID, err := ResolveOwner(ownerValue, principal)
	if err != nil {
		return Decision{Err: err}
	}
	if ownerID != principal.ID && !p.Exempt(principal) {
		return Decision{Err: ErrForbidden}
	}
	return Decision{OwnerID: ownerID}
}

// CanAccessOwned applies the ownership rule to an already loaded resource.
func (p AccessPolicy) CanAccessOwned(principal *Principal, ownerID int64) bool {
	if principal == nil {
		return false
	}
	return p.Exempt(principal) || principal.ID == ownerID
}

// Exempt reports whether principal skips ownership checks altogether.
func (p AccessPolicy) Exempt(principal *Principal) bool {
	return p.AdminBypassOwnership && principal.IsAdmin()
}

// ResolveOwner maps "me" onto the principal and parses anything else as a
// positive id.
func ResolveOwner(value string, principal *Principal) (int64, error) {
	if value == MeAlias {
		return principal.ID, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidOwnerRef
	}
	return id, nil
}
