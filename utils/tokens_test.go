package utils

import (
	"os"
	"testing"
)

func TestMagicLinkTokenRoundTrip(t *testing.T) {
	os.Setenv("EMAIL_TOKEN_SECRET", "testsecret")

	token, nonce, err := CreateMagicLinkToken("agent@example.com")
	if err != nil {
		t.Fatalf("sign magic-link token: %v", err)
	}
	if token == "" || nonce == "" {
		t.Fatal("expected non-empty token and nonce")
	}

	claims, err := VerifyMagicLinkToken(token)
	if err != nil {
		t.Fatalf("verify magic-link token: %v", err)
	}
	if claims.Email != "agent@example.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
	if claims.Nonce != nonce {
		t.Fatalf("nonce mismatch: %s != %s", claims.Nonce, nonce)
	}
}

func TestMagicLinkTokenRejectsWrongSecret(t *testing.T) {
	os.Setenv("EMAIL_TOKEN_SECRET", "testsecret")
	token, _, err := CreateMagicLinkToken("agent@example.com")
	if err != nil {
		t.Fatalf("sign magic-link token: %v", err)
	}

	os.Setenv("EMAIL_TOKEN_SECRET", "another-secret")
	if _, err := VerifyMagicLinkToken(token); err == nil {
		t.Fatal("expected verification to fail with a different secret")
	}
}
