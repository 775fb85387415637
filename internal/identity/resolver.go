package identity

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chowline/chowline-backend/pkg/config"
	pkgerrors "github.com/chowline/chowline-backend/pkg/errors"
	"github.com/chowline/chowline-backend/pkg/types"
)

var accessTokenSigningMethod = jwt.SigningMethodHS256

// Resolver translates transport credentials into a CartOwner. An authenticated
// user always takes precedence over an anonymous cart token.
type Resolver struct {
	cfg config.JWTConfig
}

// NewResolver builds a resolver that verifies access token signature and expiry.
func NewResolver(cfg config.JWTConfig) (*Resolver, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt secret required for identity resolver")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("jwt issuer required for identity resolver")
	}
	return &Resolver{cfg: cfg}, nil
}

// Resolve yields the CartOwner for the given credentials. A valid access token
// wins over the anonymous token; a present-but-invalid access token is rejected
// rather than silently downgraded to anonymous.
func (r *Resolver) Resolve(accessToken, anonToken string) (types.CartOwner, error) {
	accessToken = strings.TrimSpace(accessToken)
	anonToken = strings.TrimSpace(anonToken)

	if accessToken != "" {
		userID, err := r.parseUserID(accessToken)
		if err != nil {
			return types.CartOwner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
		}
		return types.UserOwner(userID), nil
	}

	if anonToken != "" {
		return types.AnonymousOwner(anonToken), nil
	}

	return types.CartOwner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no identity provided")
}

func (r *Resolver) parseUserID(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != accessTokenSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(r.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{accessTokenSigningMethod.Alg()}),
		jwt.WithIssuer(r.cfg.Issuer),
	)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject is not a user id: %w", err)
	}
	return userID, nil
}
