package auth

import "testing"

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, err := HashPassword("sw0rdfish")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "sw0rdfish" {
		t.Fatalf("hash equals plaintext")
	}
	if !CheckPassword("sw0rdfish", hash) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword("sw0rdf1sh", hash) {
		t.Fatalf("wrong password accepted")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("sw0rdfish")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("sw0rdfish")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Fatalf("short password accepted")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("six character password rejected: %v", err)
	}
}
