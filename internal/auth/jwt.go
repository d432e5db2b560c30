package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sh16coder/Trackitstudy/internal"
)

// Claims carried in access tokens issued by the identity provider.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JWTAuthProvider validates HS256 access tokens locally. The identity
// provider signs them; this service only checks the signature and reads
// the stable user ID out of the claims.
type JWTAuthProvider struct {
	secret []byte
	logger internal.Logger
}

func NewJWTAuthProvider(secret string, logger internal.Logger) *JWTAuthProvider {
	return &JWTAuthProvider{secret: []byte(secret), logger: logger}
}

func (a *JWTAuthProvider) ValidateToken(ctx context.Context, tokenString string) (*internal.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		a.logger.Warnf("jwt validation failed: %v", err)
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrUnauthorized
	}
	return &internal.User{ID: claims.UserID, Token: tokenString, Name: claims.Name}, nil
}
