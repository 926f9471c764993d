package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionTTL          = 48 * time.Hour
	CompanionTempTTL    = 24 * time.Hour
	CompanionSessionTTL = 7 * 24 * time.Hour

	CookieName = "jwt"
)

type CustomClaims struct {
	UserID         string      `json:"userId"`
	CompanionID    string      `json:"companionId,omitempty"`
	Role           models.Role `json:"role"`
	Email          string      `json:"email,omitempty"`
	IsTempPassword bool        `json:"isTempPassword,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 tokens under the current key id and verifies
// tokens signed under the current or the previous key.
type TokenIssuer struct {
	secret []byte
	keyID  string
	issuer string
	jwks   *keyfunc.JWKS
}

func NewTokenIssuer(secret, keyID, issuer string, previousSecrets map[string]string) *TokenIssuer {
	opts := keyfunc.GivenKeyOptions{Algorithm: jwt.SigningMethodHS256.Alg()}
	given := map[string]keyfunc.GivenKey{
		keyID: keyfunc.NewGivenHMAC([]byte(secret), opts),
	}
	for kid, s := range previousSecrets {
		if kid == "" || s == "" || kid == keyID {
			continue
		}
		given[kid] = keyfunc.NewGivenHMAC([]byte(s), opts)
	}
	return &TokenIssuer{
		secret: []byte(secret),
		keyID:  keyID,
		issuer: issuer,
		jwks:   keyfunc.NewGiven(given),
	}
}

// Sign returns a signed token for claims that expires after ttl.
func (ti *TokenIssuer) Sign(claims CustomClaims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.UserID,
		Issuer:    ti.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	token.Header["kid"] = ti.keyID

	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (ti *TokenIssuer) Verify(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, ti.jwks.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, errors.New("token is missing identity claims")
	}
	return claims, nil
}

// Remaining is how long the token stays valid from now.
func (c *CustomClaims) Remaining() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return time.Until(c.ExpiresAt.Time)
}
