package auth

import (
	"testing"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 42, Role: models.RoleVendor}

	token, err := IssueToken("secret", user, time.Hour)
	if err != nil {
		t.Fatalf("Issue token: %v", err)
	}

	principal, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("Parse token: %v", err)
	}
	if principal.UserID != 42 {
		t.Errorf("Expected user ID 42, got %d", principal.UserID)
	}
	if !principal.IsVendor() {
		t.Errorf("Expected vendor role, got %s", principal.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	user := &models.User{ID: 1, Role: models.RoleCustomer}

	token, err := IssueToken("secret", user, time.Hour)
	if err != nil {
		t.Fatalf("Issue token: %v", err)
	}

	if _, err := ParseToken("other-secret", token); err != ErrInvalidToken {
		t.Errorf("Expected invalid token error, got: %v", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	user := &models.User{ID: 1, Role: models.RoleCustomer}

	token, err := IssueToken("secret", user, -time.Minute)
	if err != nil {
		t.Fatalf("Issue token: %v", err)
	}

	if _, err := ParseToken("secret", token); err != ErrInvalidToken {
		t.Errorf("Expected invalid token error for expired token, got: %v", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-token"); err != ErrInvalidToken {
		t.Errorf("Expected invalid token error, got: %v", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("Hash password: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("Hash should not equal the plaintext")
	}

	if !CheckPassword(hash, "hunter2hunter2") {
		t.Error("Correct password should verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("Wrong password should not verify")
	}
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code := GenerateOTP()
		if len(code) != 6 {
			t.Fatalf("Expected 6-digit code, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("Expected digits only, got %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("Codes should vary across generations")
	}
}
