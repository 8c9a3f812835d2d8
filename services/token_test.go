package services

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	access, err := svc.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := svc.Parse(access, "access")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.ID == "" {
		t.Error("access token missing JTI")
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	svc := NewTokenService("test-secret")

	refresh, err := svc.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	if _, err := svc.Parse(refresh, "access"); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := svc.Parse(refresh, "refresh"); err != nil {
		t.Errorf("refresh token rejected as refresh: %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issued, err := NewTokenService("secret-a").IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if _, err := NewTokenService("secret-b").Parse(issued, "access"); err == nil {
		t.Error("token verified with the wrong secret")
	}
}

func TestRefreshTokensHaveUniqueJTI(t *testing.T) {
	svc := NewTokenService("test-secret")

	a, _ := svc.IssueRefreshToken("user-1")
	b, _ := svc.IssueRefreshToken("user-1")

	ca, err := svc.Parse(a, "refresh")
	if err != nil {
		t.Fatal(err)
	}
	cb, err := svc.Parse(b, "refresh")
	if err != nil {
		t.Fatal(err)
	}
	if ca.ID == cb.ID {
		t.Error("two refresh tokens share a JTI")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "hunter2hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
