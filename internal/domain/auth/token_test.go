package auth

import (
	"testing"
	"time"

	"workforce/internal/domain/roles"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{UserID: "u1", RoleName: "Super Administrator", DepartmentID: "d1"}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.UserID != claims.UserID || parsed.RoleName != claims.RoleName || parsed.DepartmentID != claims.DepartmentID {
		t.Fatalf("claims mismatch: %+v", parsed)
	}

	user := parsed.User()
	if user.Role != roles.SuperAdmin {
		t.Fatalf("expected normalized role SUPER_ADMIN, got %q", user.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1", RoleName: "ADMIN"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", RoleName: "ADMIN"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestClaimsUserUnknownRole(t *testing.T) {
	user := Claims{UserID: "u1", RoleName: "owner"}.User()
	if user.Role != "" {
		t.Fatalf("expected empty role for unknown claim, got %q", user.Role)
	}
}
