package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the structure of the data stored inside the token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies the signed tokens the gateway
// requires before upgrading a connection. Identity issuance itself
// (registration, passwords) lives outside this service.
type Authenticator struct {
	key []byte
	ttl time.Duration
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{key: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed token for a specific user.
func (a *Authenticator) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-relay",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.key)
}

// ValidateToken parses and validates the signature and expiration of a
// token string.
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
