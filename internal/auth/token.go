package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager signs and verifies HS256 session tokens with one shared
// secret. Tokens cannot be revoked; they stay valid until exp.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs claims with exp = now + ttl. iat, nbf and jti are set here;
// everything else in claims is carried unchanged.
func (tm *TokenManager) Issue(claims *models.TokenClaims, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", fmt.Errorf("claims are required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}

	now := tm.now()
	issued := *claims
	issued.ID = uuid.New().String()
	issued.IssuedAt = jwt.NewNumericDate(now)
	issued.NotBefore = jwt.NewNumericDate(now)
	issued.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if issued.Subject == "" {
		issued.Subject = issued.Username
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &issued)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and time claims. Expired tokens return
// models.ErrTokenExpired; anything else wrong returns models.ErrInvalidToken.
func (tm *TokenManager) Verify(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}
