package auth

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var fastPasswords = config.PasswordConfig{ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

func TestRegisterServiceSignsInNewCustomer(t *testing.T) {
	conn := dbtest.Open(t)
	repo := users.NewRepository(conn)
	usersSvc, err := users.NewService(users.ServiceParams{
		Repo:           repo,
		Tx:             dbtest.TxRunner{DB: conn},
		PasswordConfig: fastPasswords,
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("users service: %v", err)
	}
	authSvc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: &stubSessionManager{refreshToken: "r"}, JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	svc, err := NewRegisterService(RegisterServiceParams{Users: usersSvc, Auth: authSvc})
	if err != nil {
		t.Fatalf("register service: %v", err)
	}

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "nuevo@example.com",
		Password:  "password123",
		FirstName: "Nuevo",
		LastName:  "Cliente",
		Profile:   users.ProfileInput{NationalID: "40111222"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Profile == nil || resp.Profile.NationalID != "40111222" {
		t.Fatalf("expected profile in response, got %+v", resp.Profile)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer, got %s", claims.Role)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{Email: "x@example.com", FirstName: "X", LastName: "Y"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error without password, got %v", err)
	}
}

func TestAdminRegisterCreatesStaffUser(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewAdminRegisterService(AdminRegisterServiceParams{
		Tx:             dbtest.TxRunner{DB: conn},
		Users:          users.NewRepository(conn),
		PasswordConfig: fastPasswords,
	})
	if err != nil {
		t.Fatalf("admin register service: %v", err)
	}

	req := AdminRegisterRequest{FirstName: "Sol", LastName: "Vendedora", Email: "Sol@Example.com", Password: "password123"}
	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if user.Role != enums.UserRoleAdmin || user.Email != "sol@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Register(context.Background(), req); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
	if _, err := svc.Register(context.Background(), AdminRegisterRequest{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
