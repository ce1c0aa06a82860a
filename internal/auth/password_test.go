package auth

import (
	"errors"
	"strings"
	"testing"
)

// fastHasher keeps tests quick; production uses DefaultPasswordHasher.
var fastHasher = PasswordHasher{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hash, err := fastHasher.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Errorf("unexpected PHC prefix: %q", hash)
	}

	ok, err := fastHasher.Verify("correct-horse-battery-staple", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() should return true for correct password")
	}

	ok, err = fastHasher.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Error("Verify() should return false for wrong password")
	}
}

func TestPasswordHasher_VerifyUsesStoredParameters(t *testing.T) {
	hash, err := fastHasher.Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := DefaultPasswordHasher().Verify("secret-password", hash)
	if err != nil || !ok {
		t.Errorf("Verify() with different costs = %v, %v; want true, nil", ok, err)
	}
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	h1, _ := fastHasher.Hash("same-password")
	h2, _ := fastHasher.Hash("same-password")
	if h1 == h2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	tests := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
	}
	for _, encoded := range tests {
		if _, err := fastHasher.Verify("x", encoded); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("Verify(%q) error = %v, want ErrMalformedHash", encoded, err)
		}
	}
}
