package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type memPersist struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemPersist() *memPersist {
	return &memPersist{data: map[string][]byte{}}
}

func (m *memPersist) Get(key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memPersist) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}

func (m *memPersist) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *memPersist) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// signToken ออก HS256 token ให้ userFromToken อ่าน sub/email ได้จริง
func signToken(t *testing.T, sub, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

type eventLog struct {
	mu     sync.Mutex
	events []AuthEvent
}

func (l *eventLog) record(ev AuthEvent, _ *Session) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) all() []AuthEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuthEvent{}, l.events...)
}

func TestSignInWithPassword(t *testing.T) {
	token := signToken(t, "u1", "a@b.c")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "a@b.c" || creds["password"] != "secret" {
			t.Errorf("credentials not forwarded: %v", creds)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  token,
			"refresh_token": "rt",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	persist := newMemPersist()
	c := New(Config{BaseURL: srv.URL, AnonKey: "anon"}, persist)
	defer c.Auth.Close()

	log := &eventLog{}
	unsub := c.Auth.OnAuthStateChange(log.record)
	defer unsub()

	s, err := c.Auth.SignInWithPassword(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if s.User == nil || s.User.ID != "u1" || s.User.Email != "a@b.c" {
		t.Errorf("user should be decoded from the access token, got %+v", s.User)
	}
	if s.ExpiresAt == 0 {
		t.Error("ExpiresAt should be derived from expires_in")
	}
	if got := c.Auth.GetSession(); got == nil || got.AccessToken != token {
		t.Error("session should be adopted")
	}
	if !persist.has(sessionStorageKey) {
		t.Error("session should be persisted for the next launch")
	}
	if ev := log.all(); len(ev) != 1 || ev[0] != SignedIn {
		t.Errorf("events = %v, want [SIGNED_IN]", ev)
	}
}

func TestSignInFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		w.Write([]byte(`{"message":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, AnonKey: "anon"}, newMemPersist())
	defer c.Auth.Close()

	if _, err := c.Auth.SignInWithPassword(context.Background(), "a@b.c", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if c.Auth.GetSession() != nil {
		t.Error("failed sign-in must not leave a session behind")
	}
}

func TestSignOutClearsSessionAndPersister(t *testing.T) {
	token := signToken(t, "u1", "a@b.c")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			json.NewEncoder(w).Encode(map[string]any{"access_token": token, "expires_in": 3600})
		case "/auth/v1/logout":
			w.WriteHeader(204)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	persist := newMemPersist()
	c := New(Config{BaseURL: srv.URL, AnonKey: "anon"}, persist)
	defer c.Auth.Close()

	c.Auth.SignInWithPassword(context.Background(), "a@b.c", "secret")
	log := &eventLog{}
	unsub := c.Auth.OnAuthStateChange(log.record)
	defer unsub()

	if err := c.Auth.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if c.Auth.GetSession() != nil {
		t.Error("session should be cleared")
	}
	if persist.has(sessionStorageKey) {
		t.Error("persisted session should be dropped")
	}
	if ev := log.all(); len(ev) != 1 || ev[0] != SignedOut {
		t.Errorf("events = %v, want [SIGNED_OUT]", ev)
	}
}

func TestSignOutFailureKeepsSession(t *testing.T) {
	token := signToken(t, "u1", "a@b.c")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			json.NewEncoder(w).Encode(map[string]any{"access_token": token, "expires_in": 3600})
		case "/auth/v1/logout":
			w.WriteHeader(500)
			w.Write([]byte(`{"message":"boom"}`))
		}
	}))
	defer srv.Close()

	persist := newMemPersist()
	c := New(Config{BaseURL: srv.URL, AnonKey: "anon"}, persist)
	defer c.Auth.Close()

	c.Auth.SignInWithPassword(context.Background(), "a@b.c", "secret")

	if err := c.Auth.SignOut(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Auth.GetSession() == nil {
		t.Error("unconfirmed sign-out must keep the local session")
	}
	if !persist.has(sessionStorageKey) {
		t.Error("persisted session should survive a failed sign-out")
	}
}

func TestRestoreSessionFromPersister(t *testing.T) {
	token := signToken(t, "u1", "a@b.c")
	persist := newMemPersist()
	persist.Put(sessionStorageKey, Session{
		AccessToken:  token,
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		User:         &User{ID: "u1", Email: "a@b.c"},
	})

	c := New(Config{BaseURL: "http://unused.invalid", AnonKey: "anon"}, persist)
	defer c.Auth.Close()

	s := c.Auth.GetSession()
	if s == nil || s.User == nil || s.User.ID != "u1" {
		t.Fatalf("restored session = %+v", s)
	}
}

func TestRestoreDropsExpiredSession(t *testing.T) {
	persist := newMemPersist()
	persist.Put(sessionStorageKey, Session{
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Hour).Unix(),
	})

	c := New(Config{BaseURL: "http://unused.invalid", AnonKey: "anon"}, persist)
	defer c.Auth.Close()

	if c.Auth.GetSession() != nil {
		t.Error("expired session must not be restored")
	}
	if persist.has(sessionStorageKey) {
		t.Error("expired session should be purged from storage")
	}
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	c := New(Config{BaseURL: "http://unused.invalid", AnonKey: "anon"}, nil)
	defer c.Auth.Close()

	log := &eventLog{}
	unsub := c.Auth.OnAuthStateChange(log.record)
	unsub()

	c.Auth.emit(SignedIn, nil)
	if len(log.all()) != 0 {
		t.Error("listener fired after unsubscribe")
	}
}

func TestUserFromToken(t *testing.T) {
	token := signToken(t, "u1", "a@b.c")
	u := userFromToken(token)
	if u == nil || u.ID != "u1" || u.Email != "a@b.c" {
		t.Errorf("userFromToken = %+v", u)
	}

	if userFromToken("not-a-jwt") != nil {
		t.Error("garbage token should yield nil user")
	}
}
