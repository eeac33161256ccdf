package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateAndVerify(t *testing.T) {
	m := NewManager()

	if err := m.CreateUser("alice", "secret"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := m.Verify("alice", "secret"); err != nil {
		t.Errorf("expected valid credentials, got %v", err)
	}
	if err := m.Verify("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := m.Verify("bob", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	m := NewManager()

	if err := m.CreateUser("alice", "secret"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := m.CreateUser("alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	m := NewManager()

	if err := m.DeleteUser("ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	if err := m.CreateUser("alice", "secret"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := m.DeleteUser("alice"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if err := m.Verify("alice", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected deleted user to fail verification, got %v", err)
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	m := NewManager()
	if err := m.CreateUser("alice", "secret"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	handler := m.BasicAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad password, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with good credentials, got %d", rec.Code)
	}
}

func TestBasicAuthOpenWithNoUsers(t *testing.T) {
	m := NewManager()
	handler := m.BasicAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected open access with no users, got %d", rec.Code)
	}
}
