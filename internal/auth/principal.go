// Package auth holds credential hashing, token issuing and the authenticated
// principal that handlers pass explicitly to services.
package auth

import "context"

// Principal identifies the caller of a request. The zero value means no
// authenticated session.
type Principal struct {
	Username    string
	Authorities []string
}

// Authenticated reports whether p carries a username.
func (p Principal) Authenticated() bool {
	return p.Username != ""
}

// HasAnyAuthority reports whether p holds at least one of the given authorities.
func (p Principal) HasAnyAuthority(authorities ...string) bool {
	for _, held := range p.Authorities {
		for _, want := range authorities {
			if held == want {
				return true
			}
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.Authenticated()
}
