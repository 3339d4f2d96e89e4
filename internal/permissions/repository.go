package permissions

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetsight/fleetsight/internal/authz"
	"github.com/fleetsight/fleetsight/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for permission records
// and role section overrides.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `scope, subject, show_all_data, restricted_customer_name,
	lock_customer_filter, default_site, visible_sections, hidden_sections,
	can_view_reports, can_manage_users, can_export_data, can_edit_vehicles,
	can_delete_records, hide_cost_forecast, hide_usage_costs, created_at, updated_at`

// UserRecord fetches the user-scope record for a principal, matched by
// email or principal ID. Returns ErrNotFound when absent.
func (r *Repository) UserRecord(ctx context.Context, principalID, email string) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM permission_records
		 WHERE scope = 'user' AND (subject = $1 OR subject = $2)
		 ORDER BY updated_at DESC LIMIT 1`, email, principalID)
	return scanRecord(row)
}

// DomainRecord fetches the domain-scope record for an email domain.
func (r *Repository) DomainRecord(ctx context.Context, domain string) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM permission_records
		 WHERE scope = 'domain' AND subject = $1`, domain)
	return scanRecord(row)
}

// ListRecords returns all stored records ordered by scope then subject.
func (r *Repository) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM permission_records ORDER BY scope, subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpsertRecord inserts or replaces a record keyed by (scope, subject).
func (r *Repository) UpsertRecord(ctx context.Context, rec Record) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO permission_records (
			scope, subject, show_all_data, restricted_customer_name,
			lock_customer_filter, default_site, visible_sections, hidden_sections,
			can_view_reports, can_manage_users, can_export_data, can_edit_vehicles,
			can_delete_records, hide_cost_forecast, hide_usage_costs
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (scope, subject) DO UPDATE SET
			show_all_data = EXCLUDED.show_all_data,
			restricted_customer_name = EXCLUDED.restricted_customer_name,
			lock_customer_filter = EXCLUDED.lock_customer_filter,
			default_site = EXCLUDED.default_site,
			visible_sections = EXCLUDED.visible_sections,
			hidden_sections = EXCLUDED.hidden_sections,
			can_view_reports = EXCLUDED.can_view_reports,
			can_manage_users = EXCLUDED.can_manage_users,
			can_export_data = EXCLUDED.can_export_data,
			can_edit_vehicles = EXCLUDED.can_edit_vehicles,
			can_delete_records = EXCLUDED.can_delete_records,
			hide_cost_forecast = EXCLUDED.hide_cost_forecast,
			hide_usage_costs = EXCLUDED.hide_usage_costs,
			updated_at = now()
		RETURNING `+recordColumns,
		rec.Stored.Scope, rec.Subject, rec.Stored.ShowAllData, rec.Stored.RestrictedCustomerName,
		rec.Stored.LockCustomerFilter, rec.Stored.DefaultSite,
		sectionStrings(rec.Stored.VisibleSections), sectionStrings(rec.Stored.HiddenSections),
		rec.Stored.CanViewReports, rec.Stored.CanManageUsers, rec.Stored.CanExportData,
		rec.Stored.CanEditVehicles, rec.Stored.CanDeleteRecords,
		rec.Stored.HideCostForecast, rec.Stored.HideUsageCosts)
	stored, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, httpx.ErrDuplicate
		}
		return Record{}, err
	}
	return stored, nil
}

// DeleteRecord removes a record. Returns ErrNotFound if nothing was deleted.
func (r *Repository) DeleteRecord(ctx context.Context, scope authz.RecordScope, subject string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM permission_records WHERE scope = $1 AND subject = $2`, scope, subject)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RoleOverrides returns all configured role section overrides.
func (r *Repository) RoleOverrides(ctx context.Context) ([]RoleOverride, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, visible_sections, updated_at FROM role_section_overrides ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overrides []RoleOverride
	for rows.Next() {
		var (
			role     string
			sections []string
			override RoleOverride
		)
		if err := rows.Scan(&role, &sections, &override.UpdatedAt); err != nil {
			return nil, err
		}
		override.Role = authz.Role(role)
		override.VisibleSections = sectionIDs(sections)
		overrides = append(overrides, override)
	}
	return overrides, rows.Err()
}

// SetRoleOverride inserts or replaces the override for a role.
func (r *Repository) SetRoleOverride(ctx context.Context, override RoleOverride) (RoleOverride, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO role_section_overrides (role, visible_sections)
		 VALUES ($1, $2)
		 ON CONFLICT (role) DO UPDATE SET
			visible_sections = EXCLUDED.visible_sections,
			updated_at = now()
		 RETURNING role, visible_sections, updated_at`,
		override.Role, sectionStrings(override.VisibleSections))
	var (
		role     string
		sections []string
		stored   RoleOverride
	)
	if err := row.Scan(&role, &sections, &stored.UpdatedAt); err != nil {
		return RoleOverride{}, err
	}
	stored.Role = authz.Role(role)
	stored.VisibleSections = sectionIDs(sections)
	return stored, nil
}

// DeleteRoleOverride removes the override for a role.
func (r *Repository) DeleteRoleOverride(ctx context.Context, role authz.Role) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM role_section_overrides WHERE role = $1`, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		scope   string
		visible []string
		hidden  []string
		rec     Record
	)
	err := row.Scan(
		&scope, &rec.Subject, &rec.Stored.ShowAllData, &rec.Stored.RestrictedCustomerName,
		&rec.Stored.LockCustomerFilter, &rec.Stored.DefaultSite, &visible, &hidden,
		&rec.Stored.CanViewReports, &rec.Stored.CanManageUsers, &rec.Stored.CanExportData,
		&rec.Stored.CanEditVehicles, &rec.Stored.CanDeleteRecords,
		&rec.Stored.HideCostForecast, &rec.Stored.HideUsageCosts,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.Stored.Scope = authz.RecordScope(scope)
	rec.Stored.VisibleSections = sectionIDs(visible)
	rec.Stored.HiddenSections = sectionIDs(hidden)
	return rec, nil
}

func sectionStrings(sections []authz.SectionID) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = string(s)
	}
	return out
}

func sectionIDs(raw []string) []authz.SectionID {
	if len(raw) == 0 {
		return nil
	}
	out := make([]authz.SectionID, len(raw))
	for i, s := range raw {
		out[i] = authz.SectionID(s)
	}
	return out
}
