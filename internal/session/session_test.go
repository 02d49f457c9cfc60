// ABOUTME: Tests for Session helpers and the in-memory store

package session

import "testing"

func TestNormalize(t *testing.T) {
	s := Session{IsAdmin: true, UserID: "u1"}.Normalize()
	if s.IsAdmin {
		t.Error("expected admin flag dropped without token")
	}

	s = Session{Token: "tok", IsAdmin: true}.Normalize()
	if !s.IsAdmin {
		t.Error("expected admin flag kept with token")
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		s    Session
		want string
	}{
		{Session{}, "guest"},
		{Session{IsAdmin: true}, "guest"},
		{Session{Token: "t"}, "user"},
		{Session{Token: "t", IsAdmin: true}, "admin"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.s.Role(); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(Session{})

	m.Set(Session{Token: "t", IsAdmin: true, UserID: "u1"})
	got, err := m.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "t" || !got.IsAdmin || got.UserID != "u1" {
		t.Errorf("unexpected session %+v", got)
	}

	m.Clear()
	got, _ = m.Get()
	if got != (Session{}) {
		t.Errorf("expected empty session, got %+v", got)
	}
}
