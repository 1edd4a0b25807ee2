package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/socialsense/social-sense-backend/internal/apperr"
)

// TokenService issues and validates HS256 bearer tokens carrying the user id
// as subject. Validation fails closed: any decode error, signature mismatch,
// or expired timestamp yields Unauthorized.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for userID and returns it with its expiry as a unix
// timestamp.
func (s *TokenService) Issue(userID string) (string, int64, error) {
	expiresAt := time.Now().Add(s.ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt.Unix(), nil
}

// Subject validates tokenString and returns the user id it was issued for.
func (s *TokenService) Subject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.New(apperr.Unauthorized, "could not validate credentials")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.New(apperr.Unauthorized, "could not validate credentials")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperr.New(apperr.Unauthorized, "could not validate credentials")
	}
	return sub, nil
}
