package security_test

import (
	"testing"
	"time"

	"github.com/Rrens/text-to-sql-chat/internal/security"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	accessToken, err := manager.GenerateAccessToken("admin")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if accessToken == "" {
		t.Error("access token is empty")
	}

	claims, err := manager.ValidateAccessToken(accessToken)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}

	if claims.Username != "admin" {
		t.Errorf("username mismatch: got %v, want %v", claims.Username, "admin")
	}

	if claims.ID == "" {
		t.Error("token ID is empty")
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	// Invalid token format
	_, err := manager.ValidateAccessToken("invalid-token")
	if err == nil {
		t.Error("expected error for invalid token, got nil")
	}

	// Empty token
	_, err = manager.ValidateAccessToken("")
	if err == nil {
		t.Error("expected error for empty token, got nil")
	}

	// Token signed with different secret
	otherManager := security.NewJWTManager("different-secret-key-32-chars!!", 15*time.Minute)
	token, _ := otherManager.GenerateAccessToken("admin")

	_, err = manager.ValidateAccessToken(token)
	if err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}

	// Expired token
	expired := security.NewJWTManager("test-secret-key-with-32-chars!!", -time.Minute)
	token, _ = expired.GenerateAccessToken("admin")

	_, err = manager.ValidateAccessToken(token)
	if err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestJWTManager_AccessTokenTTL(t *testing.T) {
	accessTTL := 30 * time.Minute
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", accessTTL)

	if manager.AccessTokenTTL() != accessTTL {
		t.Errorf("access token TTL mismatch: got %v, want %v", manager.AccessTokenTTL(), accessTTL)
	}
}

func TestInspectToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", time.Hour)
	token, err := manager.GenerateAccessToken("admin")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	info, err := security.InspectToken(token)
	if err != nil {
		t.Fatalf("failed to inspect token: %v", err)
	}

	if info.Subject != "admin" {
		t.Errorf("subject mismatch: got %v, want %v", info.Subject, "admin")
	}

	if info.Expired(time.Now()) {
		t.Error("fresh token reported as expired")
	}

	if !info.Expired(time.Now().Add(2 * time.Hour)) {
		t.Error("token not reported as expired after its TTL")
	}

	if _, err := security.InspectToken("opaque-token"); err == nil {
		t.Error("expected error for opaque token, got nil")
	}
}
