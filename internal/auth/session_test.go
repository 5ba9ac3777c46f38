package auth

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	st := NewSessionStore(time.Minute)
	s := st.Create(Scope{DriverNum: "5800905", DriverName: "Freddy Jones"})
	if s.Token == "" {
		t.Fatal("expected a session token")
	}

	got, ok := st.Get(s.Token)
	if !ok {
		t.Fatal("expected session to resolve")
	}
	if got.Scope.DriverNum != "5800905" {
		t.Errorf("scope: got %+v", got.Scope)
	}

	st.Delete(s.Token)
	if _, ok := st.Get(s.Token); ok {
		t.Fatal("logout must clear the session")
	}
}

func TestSessionExpiry(t *testing.T) {
	st := NewSessionStore(20 * time.Millisecond)
	s := st.Create(Scope{DriverNum: "d"})
	time.Sleep(40 * time.Millisecond)
	if _, ok := st.Get(s.Token); ok {
		t.Fatal("expected session to expire")
	}
}

func TestSessionUnknownToken(t *testing.T) {
	st := NewSessionStore(time.Minute)
	if _, ok := st.Get("nope"); ok {
		t.Fatal("unknown token must not resolve")
	}
}

func TestSessionTokensUnique(t *testing.T) {
	st := NewSessionStore(time.Minute)
	a := st.Create(Scope{DriverNum: "a"})
	b := st.Create(Scope{DriverNum: "b"})
	if a.Token == b.Token {
		t.Fatal("tokens must be unique")
	}
}
