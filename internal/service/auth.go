package service

import (
	"context"
	"fmt"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/repo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	roles  repo.RoleRepository
	logger *zap.SugaredLogger
}

func NewAuthService(roles repo.RoleRepository, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		roles:  roles,
		logger: logger,
	}
}

// RoleInput carries a plaintext PIN; it is hashed before storage and
// never persisted as-is.
type RoleInput struct {
	ID          string
	Nom         string
	Pin         string
	Permissions []string
}

// Login resolves a PIN to a role. An unmatched PIN returns nil without
// an error: a wrong PIN is an empty result, not a failure.
func (s *AuthService) Login(ctx context.Context, pin string) (*domain.Role, error) {
	roles, err := s.roles.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	for i := range roles {
		if bcrypt.CompareHashAndPassword([]byte(roles[i].PinHash), []byte(pin)) == nil {
			s.logger.Infow("login", "role_id", roles[i].ID)
			return &roles[i], nil
		}
	}

	return nil, nil
}

func (s *AuthService) AuthenticateAdmin(ctx context.Context, pin string) (bool, error) {
	roles, err := s.roles.GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load roles: %w", err)
	}

	for i := range roles {
		if roles[i].ID == "admin" {
			return bcrypt.CompareHashAndPassword([]byte(roles[i].PinHash), []byte(pin)) == nil, nil
		}
	}

	return false, nil
}

// SaveRoles hashes every PIN and replaces the role set.
func (s *AuthService) SaveRoles(ctx context.Context, inputs []RoleInput) error {
	roles := make([]domain.Role, 0, len(inputs))
	for _, input := range inputs {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Pin), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash pin for role %s: %w", input.ID, err)
		}
		roles = append(roles, domain.Role{
			ID:          input.ID,
			Nom:         input.Nom,
			PinHash:     string(hash),
			Permissions: input.Permissions,
		})
	}

	if err := s.roles.SaveAll(ctx, roles); err != nil {
		return fmt.Errorf("failed to save roles: %w", err)
	}

	s.logger.Infow("roles saved", "count", len(roles))

	return nil
}
