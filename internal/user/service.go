// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/resource-directory/internal/auth"
	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers a self-service account. New accounts start with the
// least privileged role and plan.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         entitlement.RoleViewer.String(),
		Plan:         entitlement.PlanBasic.String(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// ResolveViewer reads the caller's current role and plan. Stored values the
// entitlement model does not recognize resolve to the least privileged ones.
func (s *Service) ResolveViewer(
	ctx context.Context,
	userID string,
) (entitlement.Viewer, error) {
	if userID == "" {
		return entitlement.Viewer{}, fmt.Errorf("resolve viewer: %w", core.ErrNotFound)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return entitlement.Viewer{}, err
	}

	if _, ok := entitlement.ParsePlan(user.Plan); !ok {
		slog.WarnContext(ctx, "unrecognized viewer plan",
			"user_id", user.ID,
			"plan", user.Plan,
		)
	}

	return user.Viewer(), nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

// UpdateAccess changes a user's role or plan. Only a super admin may grant
// or revoke super admin, and nobody may change their own role.
func (s *Service) UpdateAccess(
	ctx context.Context,
	requesterID, targetID string,
	req UpdateAccessRequest,
) (*User, error) {
	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("update access: requester: %w", err)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	requesterRole := requester.Viewer().Role
	if !requesterRole.Elevated() {
		return nil, fmt.Errorf("update access: %w", core.ErrForbidden)
	}

	if req.Role != nil {
		if !entitlement.ValidRole(*req.Role) {
			return nil, fmt.Errorf("update access: role %q: %w", *req.Role, core.ErrInvalidInput)
		}
		role := entitlement.ParseRole(*req.Role)

		if requester.ID == target.ID && role != requesterRole {
			return nil, fmt.Errorf("update access: own role: %w", core.ErrForbidden)
		}

		touchesSuper := role == entitlement.RoleSuperAdmin ||
			target.Viewer().Role == entitlement.RoleSuperAdmin
		if touchesSuper && requesterRole != entitlement.RoleSuperAdmin {
			return nil, fmt.Errorf("update access: super admin: %w", core.ErrForbidden)
		}

		target.Role = role.String()
	}

	if req.Plan != nil {
		plan, ok := entitlement.ParsePlan(*req.Plan)
		if !ok {
			return nil, fmt.Errorf("update access: plan %q: %w", *req.Plan, core.ErrInvalidInput)
		}
		target.Plan = plan.String()
	}

	if err := s.repo.UpdateAccess(ctx, target); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user access updated",
		"requester_id", requester.ID,
		"user_id", target.ID,
		"role", target.Role,
		"plan", target.Plan,
	)

	return target, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func toUserInfo(u *User) *auth.UserInfo {
	v := u.Viewer()
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         v.Role.String(),
		Plan:         v.Plan.String(),
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
