package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubRegisterService struct {
	resp *auth.LoginResponse
	err  error
	got  auth.RegisterRequest
}

func (s *stubRegisterService) Register(_ context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	s.got = req
	return s.resp, s.err
}

const registerBody = `{
	"first_name": "Lucia",
	"last_name": "Gomez",
	"email": "lucia@example.com",
	"password": "Secret123!",
	"profile": {
		"full_name": "Lucia Gomez",
		"national_id": "1032456789",
		"phone": "3001234567",
		"address": "Calle 10 # 5-20"
	}
}`

func TestAuthRegisterSuccess(t *testing.T) {
	svc := &stubRegisterService{resp: &auth.LoginResponse{AccessToken: "new-token", RefreshToken: "refresh"}}
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(registerBody))
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(TokenHeader); got != "new-token" {
		t.Fatalf("expected token header new-token got %s", got)
	}
	if svc.got.Profile.NationalID != "1032456789" {
		t.Fatalf("expected profile to be decoded, got %+v", svc.got.Profile)
	}
}

func TestAuthRegisterRequiresProfile(t *testing.T) {
	svc := &stubRegisterService{}
	body := `{"first_name":"Lucia","last_name":"Gomez","email":"lucia@example.com","password":"Secret123!","profile":{}}`
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthRegisterPropagatesConflict(t *testing.T) {
	svc := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(registerBody))
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
