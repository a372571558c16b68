package security

import (
	"strings"
	"testing"
)

func TestHashPasswordRequiresMinimumLength(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestHashPasswordAndVerify(t *testing.T) {
	password := "this-is-a-long-password"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash encoding: %q", hash)
	}
	if !VerifyPassword(password, hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Fatalf("expected wrong password verification to fail")
	}
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	hashes := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=2,p=1$salt",
		"$argon2id$v=18$m=65536,t=2,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$a2V5",
		"$bcrypt$v=19$m=65536,t=2,p=1$c2FsdA$a2V5",
	}
	for _, h := range hashes {
		if VerifyPassword("whatever-password", h) {
			t.Errorf("VerifyPassword accepted malformed hash %q", h)
		}
	}
}
