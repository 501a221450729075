package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/models"
)

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())
	user := models.User{ID: "user-1", Username: "alice"}

	tokens, err := issuer.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", tokens)
	}
	if tokens.AccessToken == tokens.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	claims, err := issuer.VerifyAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	claims, err = issuer.VerifyRefresh(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected refresh claims: %+v", claims)
	}
}

func TestTokenKindsDoNotCross(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())

	tokens, err := issuer.IssuePair(models.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if _, err := issuer.VerifyAccess(tokens.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid verifying refresh token as access, got %v", err)
	}
	if _, err := issuer.VerifyRefresh(tokens.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid verifying access token as refresh, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())

	issued := time.Now().UTC()
	issuer.nowFunc = func() time.Time { return issued }

	tokens, err := issuer.IssuePair(models.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	issuer.nowFunc = func() time.Time { return issued.Add(16 * time.Minute) }
	if _, err := issuer.VerifyAccess(tokens.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	// The refresh token has a longer lifetime and is still good.
	if _, err := issuer.VerifyRefresh(tokens.RefreshToken); err != nil {
		t.Fatalf("refresh token should still verify: %v", err)
	}

	issuer.nowFunc = func() time.Time { return issued.Add(25 * time.Hour) }
	if _, err := issuer.VerifyRefresh(tokens.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired for refresh, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())

	tokens, err := issuer.IssuePair(models.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	parts := strings.Split(tokens.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tokens.AccessToken)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := issuer.VerifyAccess(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}

	if _, err := issuer.VerifyAccess("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}
