package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword(" hunter2 ")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "" || hash == "hunter2" {
		t.Fatalf("expected non-empty hash distinct from the password")
	}
	if !VerifyPassword("hunter2", hash) {
		t.Fatalf("expected trimmed password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("did not expect wrong password to verify")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("   "); err == nil {
		t.Fatalf("expected error for blank password")
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	if got := NormalizeUsername("  Dana.M  "); got != "dana.m" {
		t.Fatalf("unexpected normalized username: %q", got)
	}
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	if !ValidRole("manager") || !ValidRole("employee") {
		t.Fatalf("expected issued roles to be valid")
	}
	if ValidRole("admin") {
		t.Fatalf("did not expect unknown role to be valid")
	}
}
