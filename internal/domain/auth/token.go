package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"workforce/internal/domain/roles"
)

// Claims are issued by the external identity provider. RoleName is whatever
// spelling the provider uses; Role normalizes it.
type Claims struct {
	UserID       string `json:"uid"`
	RoleName     string `json:"role"`
	DepartmentID string `json:"dept,omitempty"`
	jwt.RegisteredClaims
}

type UserContext struct {
	UserID       string
	Role         roles.Role
	DepartmentID string
}

func (c Claims) User() UserContext {
	role, _ := roles.Normalize(c.RoleName)
	return UserContext{UserID: c.UserID, Role: role, DepartmentID: c.DepartmentID}
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
