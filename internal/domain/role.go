package domain

// Role identifies which side of the marketplace a user belongs to.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleWalker Role = "walker"
)

// ParseRole validates an untrusted role string. Anything other than the
// two known roles is rejected; storage and provider metadata are never
// trusted to hold a well-formed value.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleWalker:
		return Role(s), true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleWalker
}

func (r Role) String() string {
	return string(r)
}
