package fleet

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fleetsight/fleetsight/internal/authz"
)

// RepositoryPort defines data access methods for fleet entities.
type RepositoryPort interface {
	ListActiveVehicles(ctx context.Context) ([]Vehicle, error)
	ListActiveSites(ctx context.Context) ([]Site, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// Service fetches entity collections and scopes them per principal.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ScopedCollections fetches the three collections concurrently and narrows
// them to the principal's entitlement.
func (s *Service) ScopedCollections(ctx context.Context, p authz.Principal, perms authz.EffectivePermissions) (Collections, error) {
	var in Collections
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vehicles, err := s.repo.ListActiveVehicles(gctx)
		in.Vehicles = vehicles
		return err
	})
	g.Go(func() error {
		sites, err := s.repo.ListActiveSites(gctx)
		in.Sites = sites
		return err
	})
	g.Go(func() error {
		customers, err := s.repo.ListCustomers(gctx)
		in.Customers = customers
		return err
	})
	if err := g.Wait(); err != nil {
		return Collections{}, err
	}
	return Scope(p, perms, in), nil
}
