package auth

import (
	"context"
	"testing"
	"time"
)

func TestHS256RoundTrip(t *testing.T) {
	claims := NewClaims("designer-1", "designer", time.Hour)
	secret := "test-secret"

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("ParseAndVerifyHS256 failed: %v", err)
	}
	if parsed.DesignerID != "designer-1" || parsed.Role != "designer" || parsed.Subject != "designer-1" {
		t.Fatalf("claims mismatch: got %+v", parsed)
	}
	if _, err := ParseAndVerifyHS256(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification error with wrong secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := SignHS256(NewClaims("designer-1", "", -time.Minute), "s")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "s"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMissingDesignerRejected(t *testing.T) {
	token, err := SignHS256(NewClaims("", "", time.Hour), "s")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "s"); err == nil {
		t.Fatal("expected error for token without designer_id")
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("Bearer abc"); !ok || tok != "abc" {
		t.Fatalf("unexpected: %q %v", tok, ok)
	}
	if tok, ok := BearerToken("bearer  abc "); !ok || tok != "abc" {
		t.Fatalf("unexpected: %q %v", tok, ok)
	}
	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		if _, ok := BearerToken(h); ok {
			t.Fatalf("expected %q to be rejected", h)
		}
	}
}

func TestClaimsContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("expected no claims")
	}
	c := NewClaims("d", "", time.Hour)
	got, ok := ClaimsFromContext(WithClaims(context.Background(), &c))
	if !ok || got.DesignerID != "d" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}
