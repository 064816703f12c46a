package service

import (
	"context"
	"testing"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeRoleRepo struct {
	roles []domain.Role
}

func (f *fakeRoleRepo) GetAll(ctx context.Context) ([]domain.Role, error) {
	return append([]domain.Role(nil), f.roles...), nil
}

func (f *fakeRoleRepo) SaveAll(ctx context.Context, roles []domain.Role) error {
	f.roles = roles
	return nil
}

func hashPin(t *testing.T, pin string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash pin: %v", err)
	}
	return string(hash)
}

func seedRoles(t *testing.T) *fakeRoleRepo {
	return &fakeRoleRepo{roles: []domain.Role{
		{ID: "admin", Nom: "Administrateur", PinHash: hashPin(t, "1234")},
		{ID: "mesero", Nom: "Service en salle", PinHash: hashPin(t, "5678")},
	}}
}

func TestLoginResolvesPinToRole(t *testing.T) {
	svc := NewAuthService(seedRoles(t), zap.NewNop().Sugar())
	ctx := context.Background()

	role, err := svc.Login(ctx, "5678")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if role == nil || role.ID != "mesero" {
		t.Fatalf("expected mesero, got %+v", role)
	}

	// a wrong PIN is an empty result, not an error
	role, err = svc.Login(ctx, "0000")
	if err != nil {
		t.Fatalf("login errored on bad pin: %v", err)
	}
	if role != nil {
		t.Fatalf("bad pin resolved to %q", role.ID)
	}
}

func TestAuthenticateAdminChecksOnlyTheAdminRole(t *testing.T) {
	svc := NewAuthService(seedRoles(t), zap.NewNop().Sugar())
	ctx := context.Background()

	ok, err := svc.AuthenticateAdmin(ctx, "1234")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if !ok {
		t.Fatal("admin pin rejected")
	}

	// another role's valid PIN must not grant admin
	ok, err = svc.AuthenticateAdmin(ctx, "5678")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if ok {
		t.Fatal("mesero pin granted admin")
	}

	// no admin role at all
	svc = NewAuthService(&fakeRoleRepo{}, zap.NewNop().Sugar())
	ok, err = svc.AuthenticateAdmin(ctx, "1234")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if ok {
		t.Fatal("admin granted with no admin role defined")
	}
}

func TestSaveRolesHashesPins(t *testing.T) {
	repo := seedRoles(t)
	svc := NewAuthService(repo, zap.NewNop().Sugar())
	ctx := context.Background()

	inputs := []RoleInput{
		{ID: "admin", Nom: "Administrateur", Pin: "4321"},
		{ID: "cocina", Nom: "Cuisine", Pin: "9012"},
	}
	if err := svc.SaveRoles(ctx, inputs); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if len(repo.roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(repo.roles))
	}
	for _, role := range repo.roles {
		if role.PinHash == "" {
			t.Fatalf("role %s stored without a hash", role.ID)
		}
		if role.PinHash == "4321" || role.PinHash == "9012" {
			t.Fatalf("role %s stored its PIN in the clear", role.ID)
		}
	}

	role, err := svc.Login(ctx, "4321")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if role == nil || role.ID != "admin" {
		t.Fatalf("new admin pin does not resolve, got %+v", role)
	}
}
