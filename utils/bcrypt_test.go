package utils

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "" || hashed == "s3cret-pass" {
		t.Fatalf("hash looks wrong: %q", hashed)
	}

	if err := ComparePassword(hashed, "s3cret-pass"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := ComparePassword(hashed, "wrong-pass"); err == nil {
		t.Error("wrong password accepted")
	}
}
