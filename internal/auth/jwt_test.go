package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken("secret", "issuer", time.Minute, "user-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Fatalf("unexpected claims")
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	token, err := NewAccessToken("secret", "issuer", 7*24*time.Hour, "user-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 7*24*time.Hour-time.Minute || remaining > 7*24*time.Hour {
		t.Fatalf("expected expiry 7 days out, got %s", remaining)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := NewAccessToken("secret", "issuer", -time.Hour, "user-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if _, err := ParseToken("secret", token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewAccessToken("secret", "issuer", time.Minute, "user-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatalf("expected bad signature to be rejected")
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-token"); err == nil {
		t.Fatalf("expected malformed token to be rejected")
	}
}
