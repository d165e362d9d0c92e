package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestAuthOpenServer(t *testing.T) {
	a, err := NewAuth(nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Open() {
		t.Fatal("auth without a password should be open")
	}
	name, err := a.Authorize("", "any")
	if err != nil || name != "Observer" {
		t.Errorf("anonymous authorize = %q, %v", name, err)
	}

	tok, err := a.IssueToken("", "  Ada  ", "")
	if err != nil {
		t.Fatal(err)
	}
	name, sid, err := a.ValidateToken(tok)
	if err != nil || name != "Ada" || sid != anySector {
		t.Errorf("ValidateToken = %q %q %v", name, sid, err)
	}
}

func TestAuthOperatorPassword(t *testing.T) {
	a, err := NewAuth(nil, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if a.Open() {
		t.Fatal("auth with a password should be closed")
	}
	if _, err := a.Authorize("", "s1"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("anonymous authorize err = %v", err)
	}
	if _, err := a.IssueToken("wrong", "Ada", "s1"); !errors.Is(err, ErrBadPassword) {
		t.Errorf("wrong password err = %v", err)
	}

	tok, err := a.IssueToken("hunter2", strings.Repeat("x", 40), "s1")
	if err != nil {
		t.Fatal(err)
	}
	name, err := a.Authorize(tok, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(name) != maxObserverName {
		t.Errorf("name length = %d, want truncated to %d", len(name), maxObserverName)
	}
	if _, err := a.Authorize(tok, "s2"); !errors.Is(err, ErrWrongSector) {
		t.Errorf("other sector err = %v, want ErrWrongSector", err)
	}
}

func TestAuthRejectsForeignTokens(t *testing.T) {
	a, _ := NewAuth(nil, "")
	b, _ := NewAuth(nil, "")
	tok, err := b.IssueToken("", "Eve", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.ValidateToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token from another secret err = %v", err)
	}
	if _, _, err := a.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token err = %v", err)
	}
}

func TestAuthSecretPersisted(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	first, _ := NewAuth(db, "")
	tok, err := first.IssueToken("", "Ada", "s1")
	if err != nil {
		t.Fatal(err)
	}

	second, _ := NewAuth(db, "")
	if _, err := second.Authorize(tok, "s1"); err != nil {
		t.Errorf("token should survive a restart: %v", err)
	}
}
