package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type decodeTarget struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ana@example.com","quantity":2}`))
	var dst decodeTarget
	if err := DecodeJSONBody(req, &dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dst.Quantity != 2 {
		t.Fatalf("unexpected quantity %d", dst.Quantity)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","quantity":0}`))
	err := DecodeJSONBody(req, &decodeTarget{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok || details["email"] == "" || details["quantity"] == "" {
		t.Fatalf("expected per-field details, got %#v", pkgerrors.As(err).Details())
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ana@example.com","quantity":1,"extra":true}`))
	if err := DecodeJSONBody(req, &decodeTarget{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown field rejection, got %v", err)
	}
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("orderId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	got, err := ParseUUIDParam(withParam(id.String()), "orderId")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
	if _, err := ParseUUIDParam(withParam("abc"), "orderId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseUUIDParam(withParam(""), "orderId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&cursor=abc", nil)
	params, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params.Limit != 5 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}

	params, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || params.Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit, got %+v (%v)", params, err)
	}

	if _, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=1000", nil)); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestParseOptionalUUIDQuery(t *testing.T) {
	got, err := ParseOptionalUUIDQuery(httptest.NewRequest(http.MethodGet, "/", nil), "category_id")
	if err != nil || got != nil {
		t.Fatalf("expected nil, got %v (%v)", got, err)
	}
	if _, err := ParseOptionalUUIDQuery(httptest.NewRequest(http.MethodGet, "/?category_id=x", nil), "category_id"); err == nil {
		t.Fatal("expected error")
	}
}

type lineTarget struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type orderTarget struct {
	Lines []lineTarget `json:"lines" validate:"max=2,dive"`
}

func TestDecodeJSONBodyReportsNestedPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lines":[{"quantity":1},{"quantity":0}]}`))
	err := DecodeJSONBody(req, &orderTarget{})
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %v", err)
	}
	if details["lines[1].quantity"] != "is required" {
		t.Fatalf("unexpected details %#v", details)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingInput(t *testing.T) {
	for name, body := range map[string]string{
		"empty":    "",
		"trailing": `{"lines":[]} {"lines":[]}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := DecodeJSONBody(req, &orderTarget{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  camisa  ", 0); got != "camisa" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("pantalón corto", 8); got != "pantalón" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
}
