package authutil_test

import (
	"testing"

	"github.com/anisham/contribhub/internal/app/system/authutil"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := authutil.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !authutil.VerifyPassword(hash, "secret123") {
		t.Error("VerifyPassword rejected the correct password")
	}
	if authutil.VerifyPassword(hash, "wrong-password") {
		t.Error("VerifyPassword accepted a wrong password")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := authutil.HashPassword("abc"); err != authutil.ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := authutil.HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	b, err := authutil.HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical; salting is broken")
	}
}
