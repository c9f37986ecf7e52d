package authtoken

import (
	"testing"
	"time"
)

func TestVerifier_DisabledWhenNoSecret(t *testing.T) {
	v := NewVerifier("", "mapper")
	if v.Enabled() {
		t.Fatal("expected verifier to be disabled with empty secret")
	}
	if err := v.Verify(""); err != nil {
		t.Fatalf("Verify with disabled verifier: %v", err)
	}
	if err := v.Verify("garbage"); err != nil {
		t.Fatalf("Verify with disabled verifier should ignore token content: %v", err)
	}
}

func TestVerifier_IssueThenVerify(t *testing.T) {
	v := NewVerifier("a-long-enough-test-secret", "mapper")
	if !v.Enabled() {
		t.Fatal("expected verifier to be enabled with a secret")
	}

	tok, err := v.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := v.Verify(tok); err != nil {
		t.Fatalf("Verify(valid token): %v", err)
	}
}

func TestVerifier_RejectsExpiredToken(t *testing.T) {
	v := NewVerifier("a-long-enough-test-secret", "mapper")
	tok, err := v.Issue("admin", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := v.Verify(tok); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	issuer := NewVerifier("secret-one-long-enough", "mapper")
	tok, err := issuer.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verifier := NewVerifier("secret-two-long-enough", "mapper")
	if err := verifier.Verify(tok); err == nil {
		t.Fatal("expected verification to fail with mismatched secret")
	}
}

func TestVerifier_RejectsMissingToken(t *testing.T) {
	v := NewVerifier("a-long-enough-test-secret", "mapper")
	if err := v.Verify(""); err != ErrMissingToken {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
}

func TestVerifier_RejectsWrongIssuer(t *testing.T) {
	v := NewVerifier("a-long-enough-test-secret", "mapper")
	other := NewVerifier("a-long-enough-test-secret", "someone-else")
	tok, err := other.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := v.Verify(tok); err == nil {
		t.Fatal("expected verification to fail with mismatched issuer")
	}
}
