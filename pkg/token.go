package pkg

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	UID  int64  `json:"uid"`
	Role string `json:"role"`
}

func ParseJwtToken(tokenString string, secretKey string) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return TokenClaims{}, err
	}

	var tokenClaims TokenClaims
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if uid, ok := claims["uid"].(float64); ok {
			tokenClaims.UID = int64(uid)
		}
		if role, ok := claims["role"].(string); ok {
			tokenClaims.Role = role
		}
		return tokenClaims, nil
	}

	return TokenClaims{}, fmt.Errorf("invalid token claims")
}

func GetTokenFromHeaders(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing token")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("invalid token")
	}

	return token, nil
}
