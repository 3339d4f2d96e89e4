package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetsight/fleetsight/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, tenant_id,
	COALESCE(tenant_external_ref, ''), assigned_site_ids, assigned_vehicle_ids,
	section_override, is_active, created_at, updated_at`

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// ListUsers returns all users ordered by email.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateAccess replaces a user's role, assignments and section override.
func (r *Repository) UpdateAccess(ctx context.Context, id string, role string, siteIDs, vehicleIDs, sectionOverride []string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET
			role = $2,
			assigned_site_ids = $3,
			assigned_vehicle_ids = $4,
			section_override = $5,
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, role, siteIDs, vehicleIDs, sectionOverride)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.TenantID,
		&u.TenantExternalRef, &u.AssignedSiteIDs, &u.AssignedVehicleIDs,
		&u.SectionOverride, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
