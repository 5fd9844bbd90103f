package domain

// Well-known role authorities.
const (
	RoleClient = "ROLE_CLIENT"
	RoleAdmin  = "ROLE_ADMIN"
)

// Role is a named authority granted to users.
type Role struct {
	ID        int64
	Authority string
}

// User is an account able to authenticate and submit scores.
type User struct {
	ID           int64
	Name         string
	Username     string
	PasswordHash string
	Roles        []Role
}

// UserRole is one row of the username/role projection used for authentication.
type UserRole struct {
	Username  string
	Password  string
	RoleID    int64
	Authority string
}

// UserDetails is the identity assembled from UserRole rows for credential checks.
type UserDetails struct {
	Username     string
	PasswordHash string
	Roles        []Role
}

// Authorities lists the role names held by the identity.
func (d UserDetails) Authorities() []string {
	out := make([]string, 0, len(d.Roles))
	for _, r := range d.Roles {
		out = append(out, r.Authority)
	}
	return out
}
