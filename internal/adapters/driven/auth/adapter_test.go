package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNewAdapterWithCost(t *testing.T) {
	adapter := NewAdapterWithCost("test-secret", 4)
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
	if adapter.bcryptCost != 4 {
		t.Errorf("expected bcrypt cost 4, got %d", adapter.bcryptCost)
	}
	if string(adapter.jwtSecret) != "test-secret" {
		t.Error("expected jwt secret to be set")
	}
}

func TestHashPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4) // Low cost for faster tests

	hash, err := adapter.HashPassword("mypassword")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "" || hash == "mypassword" {
		t.Errorf("unexpected hash %q", hash)
	}

	hash2, _ := adapter.HashPassword("mypassword")
	if hash == hash2 {
		t.Error("expected different hashes for same password (due to salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)
	hash, _ := adapter.HashPassword("correctpassword")

	if !adapter.VerifyPassword("correctpassword", hash) {
		t.Error("expected password verification to succeed")
	}
	if adapter.VerifyPassword("wrongpassword", hash) {
		t.Error("expected password verification to fail for wrong password")
	}
	if adapter.VerifyPassword("correctpassword", "not-a-hash") {
		t.Error("expected password verification to fail for invalid hash")
	}
}

func TestParseToken_ValidToken(t *testing.T) {
	adapter := NewAdapter("secret")
	now := time.Now()

	token, err := adapter.GenerateToken(&domain.TokenClaims{
		Username:  "admin",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username admin, got %s", claims.Username)
	}
	if claims.ExpiresAt != now.Add(time.Hour).Unix() {
		t.Errorf("expected expiry %d, got %d", now.Add(time.Hour).Unix(), claims.ExpiresAt)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	adapter := NewAdapter("secret")
	past := time.Now().Add(-2 * time.Hour)

	token, _ := adapter.GenerateToken(&domain.TokenClaims{
		Username:  "admin",
		IssuedAt:  past.Unix(),
		ExpiresAt: past.Add(time.Hour).Unix(),
	})

	_, err := adapter.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := NewAdapter("secret-a").GenerateToken(&domain.TokenClaims{
		Username:  "admin",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	_, err := NewAdapter("secret-b").ParseToken(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseToken_MalformedToken(t *testing.T) {
	adapter := NewAdapter("secret")

	for _, token := range []string{"", "not.a.token", "abc"} {
		if _, err := adapter.ParseToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

func BenchmarkParseToken(b *testing.B) {
	adapter := NewAdapter("secret")
	token, _ := adapter.GenerateToken(&domain.TokenClaims{
		Username:  "admin",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = adapter.ParseToken(token)
	}
}
