package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CartOwner identifies who a cart session belongs to: an authenticated user or
// an anonymous visitor carrying an opaque session token. Exactly one variant is
// populated; the zero value is invalid. Once a session is owned by a user it
// never reverts to anonymous ownership.
type CartOwner struct {
	userID uuid.UUID
	token  string
}

// UserOwner builds an owner for an authenticated user.
func UserOwner(userID uuid.UUID) CartOwner {
	return CartOwner{userID: userID}
}

// AnonymousOwner builds an owner for an anonymous visitor token.
func AnonymousOwner(token string) CartOwner {
	return CartOwner{token: strings.TrimSpace(token)}
}

// IsUser reports whether the owner is an authenticated user.
func (o CartOwner) IsUser() bool {
	return o.userID != uuid.Nil
}

// IsAnonymous reports whether the owner is a token-identified visitor.
func (o CartOwner) IsAnonymous() bool {
	return o.userID == uuid.Nil && o.token != ""
}

// IsZero reports whether the owner carries neither variant.
func (o CartOwner) IsZero() bool {
	return o.userID == uuid.Nil && o.token == ""
}

// UserID returns the user id variant; uuid.Nil when anonymous.
func (o CartOwner) UserID() uuid.UUID {
	return o.userID
}

// Token returns the anonymous token variant; empty when user-owned.
func (o CartOwner) Token() string {
	if o.IsUser() {
		return ""
	}
	return o.token
}

// String renders a log-safe form of the owner.
func (o CartOwner) String() string {
	switch {
	case o.IsUser():
		return "user:" + o.userID.String()
	case o.IsAnonymous():
		return "anon:" + o.token
	default:
		return "none"
	}
}

// Validate returns an error for the zero owner.
func (o CartOwner) Validate() error {
	if o.IsZero() {
		return fmt.Errorf("cart owner is required")
	}
	return nil
}
