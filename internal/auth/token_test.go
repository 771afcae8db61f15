package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestTokenRoundTrip проверяет выпуск и разбор access-токена.
func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("secret", "cfo-ai", time.Minute)
	userID := uuid.New()

	token, err := manager.NewAccessToken(userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := manager.ParseAccessToken(token.Token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}
}

// TestTokenRejectsWrongSecret проверяет отказ при чужом секрете.
func TestTokenRejectsWrongSecret(t *testing.T) {
	manager := NewTokenManager("secret", "cfo-ai", time.Minute)
	token, err := manager.NewAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	other := NewTokenManager("other-secret", "cfo-ai", time.Minute)
	if _, err := other.ParseAccessToken(token.Token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

// TestTokenRejectsWrongIssuer проверяет валидацию издателя.
func TestTokenRejectsWrongIssuer(t *testing.T) {
	manager := NewTokenManager("secret", "someone-else", time.Minute)
	token, err := manager.NewAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ours := NewTokenManager("secret", "cfo-ai", time.Minute)
	if _, err := ours.ParseAccessToken(token.Token); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

// TestTokenRejectsExpired проверяет отказ на истекшем токене.
func TestTokenRejectsExpired(t *testing.T) {
	manager := NewTokenManager("secret", "cfo-ai", -time.Minute)
	token, err := manager.NewAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := manager.ParseAccessToken(token.Token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

// TestHashPassword проверяет хэширование и сравнение пароля.
func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ComparePassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("expected matching password, got %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
