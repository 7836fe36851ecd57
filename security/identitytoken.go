package security

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "attendance-sync"

// Identity is the operator a token is issued to.
type Identity struct {
	UniqueName string `json:"unique_name"`
	Email      string `json:"email"`
	Provider   string `json:"provider,omitempty"`
}

type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

// CreateIdentityToken signs an HS256 token for identity with the base64
// encoded secret the HTTP routes verify against.
func CreateIdentityToken(identity *Identity, base64Secret string, expiresIn time.Duration) (string, error) {
	if identity == nil || (identity.UniqueName == "" && identity.Email == "") {
		return "", errors.New("identity requires a name or email")
	}
	if expiresIn <= 0 {
		return "", errors.New("expiry must be positive")
	}
	secretBytes, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}

	subject := identity.Email
	if subject == "" {
		subject = identity.UniqueName
	}
	now := time.Now()
	claims := IdentityClaims{
		Identity: *identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretBytes)
}
