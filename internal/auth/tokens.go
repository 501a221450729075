package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/models"
)

const tokenIssuer = "cliptube"

// Claims are the signed statements carried by both token kinds.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 access and refresh tokens. Access and
// refresh tokens are signed with distinct secrets, so a token of one kind
// never verifies as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	nowFunc func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer from explicit configuration.
func NewTokenIssuer(cfg config.TokenConfig) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// IssuePair mints a fresh access/refresh token pair for the user.
func (t *TokenIssuer) IssuePair(user models.User) (models.SessionTokens, error) {
	now := t.now()

	access, err := t.sign(user, t.accessSecret, now, now.Add(t.accessTTL))
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := t.sign(user, t.refreshSecret, now, now.Add(t.refreshTTL))
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  now.Add(t.accessTTL),
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(t.refreshTTL),
	}, nil
}

// VerifyAccess checks an access token's signature and expiry.
func (t *TokenIssuer) VerifyAccess(token string) (Claims, error) {
	return t.verify(token, t.accessSecret)
}

// VerifyRefresh checks a refresh token's signature and expiry.
func (t *TokenIssuer) VerifyRefresh(token string) (Claims, error) {
	return t.verify(token, t.refreshSecret)
}

func (t *TokenIssuer) sign(user models.User, secret []byte, now, expiresAt time.Time) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique jti so two pairs minted in the same second never
			// collide; rotation compares tokens byte for byte.
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (t *TokenIssuer) verify(tokenString string, secret []byte) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.UserID == "" {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

func (t *TokenIssuer) now() time.Time {
	if t.nowFunc != nil {
		return t.nowFunc()
	}
	return time.Now().UTC()
}
