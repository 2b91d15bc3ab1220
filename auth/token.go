package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"roomchat/domain"
)

// Claims is the payload the transport layer trusts after validation.
type Claims struct {
	UserID domain.UserID `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates the session tokens carried by HTTP
// and WebSocket requests. The secret comes from configuration.
type TokenManager struct {
	secret   []byte
	duration time.Duration
}

func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), duration: duration}
}

func (t *TokenManager) Generate(userID domain.UserID) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "roomchat",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses the token and returns the verified user id.
func (t *TokenManager) Validate(tokenString string) (domain.UserID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, jwt.ErrSignatureInvalid
	}
	return claims.UserID, nil
}
