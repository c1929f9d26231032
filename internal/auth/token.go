// Package auth implements the stateless session token codec. Encoding and
// decoding are pure functions of the claims and the server secret; no state is
// kept server-side and validity is determined entirely by signature and
// expiration.
package auth

import (
	"errors"
	"strconv"
	"time"

	"anecdote/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer identifies tokens minted by this server.
	Issuer = "anecdote-api"
	// Audience identifies the intended consumer of the tokens.
	Audience = "anecdote-web"
)

// Claims is the identity payload carried by a session token.
type Claims struct {
	UserID    uint
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// EncodeToken signs the claims with the server secret using HS256.
func EncodeToken(claims Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("token secret not configured")
	}

	mapClaims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(claims.UserID), 10),
		"username": claims.Username,
		"iss":      Issuer,
		"aud":      Audience,
		"iat":      claims.IssuedAt.Unix(),
		"nbf":      claims.IssuedAt.Unix(),
		"exp":      claims.ExpiresAt.Unix(),
		"jti":      uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString([]byte(secret))
}

// DecodeToken verifies signature, issuer, audience, and expiration, and
// returns the embedded claims. Expired tokens yield ExpiredTokenError; any
// other defect yields InvalidTokenError.
func DecodeToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.NewExpiredTokenError()
		}
		return nil, models.NewInvalidTokenError()
	}
	if !token.Valid {
		return nil, models.NewInvalidTokenError()
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewInvalidTokenError()
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, models.NewInvalidTokenError()
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewInvalidTokenError()
	}

	username, ok := mapClaims["username"].(string)
	if !ok {
		return nil, models.NewInvalidTokenError()
	}

	claims := &Claims{
		UserID:   uint(userID),
		Username: username,
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
