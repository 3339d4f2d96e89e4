package fleet

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence. Queries fetch broad
// active collections; per-principal narrowing happens in Scope.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActiveVehicles returns all active vehicles.
func (r *Repository) ListActiveVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, tenant_external_ref, site_id, rfid
		 FROM vehicles WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.TenantExternalRef, &v.SiteID, &v.RFID); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// ListActiveSites returns all active sites with their customer display name.
func (r *Repository) ListActiveSites(ctx context.Context) ([]Site, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.tenant_external_ref, COALESCE(c.name, '')
		 FROM sites s
		 LEFT JOIN customers c ON c.ref = s.customer_ref
		 WHERE s.is_active ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sites []Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.ID, &s.Name, &s.TenantExternalRef, &s.CustomerName); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// ListCustomers returns all customers.
func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ref, name, tenant_external_ref FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.Ref, &c.Name, &c.TenantExternalRef); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
