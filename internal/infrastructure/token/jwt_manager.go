package token

import (
	"errors"
	"fmt"
	"time"

	domain "accounts/backend/internal/domain/account"
	usecase "accounts/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager issues and decodes signed session tokens carrying the user's
// email as subject. The secret and signing method are fixed at startup.
type JWTManager struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	expiration time.Duration
	issuer     string
}

// NewJWTManager constructs a manager with the provided secret, signing
// method name (HS256, HS384 or HS512), expiration, and issuer. An unknown
// or non-HMAC method is a startup error.
func NewJWTManager(secret, methodName string, expiration time.Duration, issuer string) (*JWTManager, error) {
	method, ok := jwt.GetSigningMethod(methodName).(*jwt.SigningMethodHMAC)
	if !ok || method == nil {
		return nil, fmt.Errorf("unsupported signing method %q", methodName)
	}
	return &JWTManager{
		secret:     []byte(secret),
		method:     method,
		expiration: expiration,
		issuer:     issuer,
	}, nil
}

// Ensure JWTManager implements the TokenManager interface.
var _ usecase.TokenManager = (*JWTManager)(nil)

// Issue creates a signed JWT naming the email as subject, expiring after
// the configured lifetime.
func (m *JWTManager) Issue(email string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
	}

	token := jwt.NewWithClaims(m.method, claims)
	return token.SignedString(m.secret)
}

// Decode verifies the signature and expiry of a token and returns the email
// it was issued for. An expired token yields ErrTokenExpired; anything else
// that fails verification yields ErrTokenInvalid.
func (m *JWTManager) Decode(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}
