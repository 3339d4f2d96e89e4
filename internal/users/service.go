package users

import (
	"context"

	"github.com/fleetsight/fleetsight/internal/authz"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateAccess(ctx context.Context, id string, role string, siteIDs, vehicleIDs, sectionOverride []string) (User, error)
}

// Service handles profile business logic and implements
// authz.PrincipalSource.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateAccess replaces a user's role, assignments and section override.
func (s *Service) UpdateAccess(ctx context.Context, id string, role string, siteIDs, vehicleIDs, sectionOverride []string) (User, error) {
	return s.repo.UpdateAccess(ctx, id, role, siteIDs, vehicleIDs, sectionOverride)
}

// PrincipalByID materializes the principal for a session user. The raw
// role claim is clamped onto the role enumeration and the section override
// is filtered to known catalogue entries.
func (s *Service) PrincipalByID(ctx context.Context, id string) (authz.Principal, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return authz.Principal{}, err
	}
	return Principal(user), nil
}

// Principal converts a stored profile row into the scoping engine's view
// of the actor.
func Principal(user User) authz.Principal {
	var override []authz.SectionID
	for _, raw := range user.SectionOverride {
		if id, ok := authz.ParseSection(raw); ok {
			override = append(override, id)
		}
	}
	return authz.Principal{
		ID:                 user.ID,
		Email:              user.Email,
		Role:               authz.ParseRole(user.Role),
		TenantID:           user.TenantID,
		TenantExternalRef:  user.TenantExternalRef,
		AssignedSiteIDs:    user.AssignedSiteIDs,
		AssignedVehicleIDs: user.AssignedVehicleIDs,
		SectionOverride:    override,
	}
}
