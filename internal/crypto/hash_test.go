package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Errorf("Hash() = %q, want bcrypt hash with cost 04", hash)
	}
}

func TestNewPasswordHasherCost(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 12, want: 12},
		{in: 0, want: DefaultBcryptCost},
		{in: 99, want: DefaultBcryptCost},
	}

	for _, tt := range tests {
		if got := NewPasswordHasher(tt.in).cost; got != tt.want {
			t.Errorf("NewPasswordHasher(%d).cost = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestVerifyPasswordCorrect(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("my-secure-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	match, err := h.Verify("my-secure-password", hash)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if !match {
		t.Error("Verify() returned false for correct password")
	}
}

func TestVerifyPasswordWrong(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	match, err := h.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if match {
		t.Error("Verify() returned true for wrong password")
	}
}

func TestHashProducesDifferentHashes(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash1, _ := h.Hash("same-password")
	hash2, _ := h.Hash("same-password")
	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for same password (salt should differ)")
	}
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if _, err := h.Verify("password", "invalid-hash-format"); err == nil {
		t.Error("Verify() expected error for invalid hash format")
	}
}
