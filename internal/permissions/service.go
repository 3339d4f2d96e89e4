package permissions

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fleetsight/fleetsight/internal/authz"
)

// RepositoryPort defines data access methods for permission data.
type RepositoryPort interface {
	UserRecord(ctx context.Context, principalID, email string) (Record, error)
	DomainRecord(ctx context.Context, domain string) (Record, error)
	ListRecords(ctx context.Context) ([]Record, error)
	UpsertRecord(ctx context.Context, rec Record) (Record, error)
	DeleteRecord(ctx context.Context, scope authz.RecordScope, subject string) error
	RoleOverrides(ctx context.Context) ([]RoleOverride, error)
	SetRoleOverride(ctx context.Context, override RoleOverride) (RoleOverride, error)
	DeleteRoleOverride(ctx context.Context, role authz.Role) error
}

// cachedRecord wraps a record lookup result so record absence can be
// cached alongside hits.
type cachedRecord struct {
	Found  bool   `json:"found"`
	Record Record `json:"record,omitempty"`
}

// Service is the cache-through store for permission records and role
// section overrides. It implements authz.RecordSource and
// authz.OverrideSource. Reads serve fresh cache entries directly, refresh
// stale ones from the repository, and fall back to the stale entry when the
// repository is unavailable.
type Service struct {
	repo   RepositoryPort
	cache  *TTLCache
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *TTLCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// UserRecord implements authz.RecordSource. A nil record with nil error
// means no user-scope record exists for the principal.
func (s *Service) UserRecord(ctx context.Context, principalID, email string) (*authz.PermissionRecord, error) {
	key := "authz:record:user:" + strings.ToLower(email)
	return s.lookupRecord(ctx, key, func(ctx context.Context) (Record, error) {
		return s.repo.UserRecord(ctx, principalID, strings.ToLower(email))
	})
}

// DomainRecord implements authz.RecordSource for domain-scope records.
func (s *Service) DomainRecord(ctx context.Context, domain string) (*authz.PermissionRecord, error) {
	key := "authz:record:domain:" + strings.ToLower(domain)
	return s.lookupRecord(ctx, key, func(ctx context.Context) (Record, error) {
		return s.repo.DomainRecord(ctx, strings.ToLower(domain))
	})
}

// RoleSectionOverrides implements authz.OverrideSource.
func (s *Service) RoleSectionOverrides(ctx context.Context) (authz.RoleSectionOverrides, error) {
	const key = "authz:overrides"

	var cached []RoleOverride
	found, stale := s.cacheGet(ctx, key, &cached)
	if found && !stale {
		return toOverrideMap(cached), nil
	}

	rows, err := s.repo.RoleOverrides(ctx)
	if err != nil {
		if found {
			s.logger.Warn("role override refresh failed, serving stale entry", slog.Any("error", err))
			return toOverrideMap(cached), nil
		}
		return nil, err
	}
	s.cacheSet(ctx, key, rows)
	return toOverrideMap(rows), nil
}

// ListRecords returns all stored permission records.
func (s *Service) ListRecords(ctx context.Context) ([]Record, error) {
	return s.repo.ListRecords(ctx)
}

// UpsertRecord stores a record and invalidates its cache entry.
func (s *Service) UpsertRecord(ctx context.Context, rec Record) (Record, error) {
	rec.Subject = strings.ToLower(strings.TrimSpace(rec.Subject))
	stored, err := s.repo.UpsertRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.invalidateRecord(ctx, stored.Stored.Scope, stored.Subject)
	return stored, nil
}

// DeleteRecord removes a record and invalidates its cache entry.
func (s *Service) DeleteRecord(ctx context.Context, scope authz.RecordScope, subject string) error {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if err := s.repo.DeleteRecord(ctx, scope, subject); err != nil {
		return err
	}
	s.invalidateRecord(ctx, scope, subject)
	return nil
}

// RoleOverrideList returns the configured overrides as stored rows.
func (s *Service) RoleOverrideList(ctx context.Context) ([]RoleOverride, error) {
	return s.repo.RoleOverrides(ctx)
}

// SetRoleOverride stores an override and invalidates the override cache.
func (s *Service) SetRoleOverride(ctx context.Context, override RoleOverride) (RoleOverride, error) {
	stored, err := s.repo.SetRoleOverride(ctx, override)
	if err != nil {
		return RoleOverride{}, err
	}
	s.invalidateOverrides(ctx)
	return stored, nil
}

// DeleteRoleOverride removes an override and invalidates the override cache.
func (s *Service) DeleteRoleOverride(ctx context.Context, role authz.Role) error {
	if err := s.repo.DeleteRoleOverride(ctx, role); err != nil {
		return err
	}
	s.invalidateOverrides(ctx)
	return nil
}

// WarmCaches reloads every stored record and the override table into the
// cache. Invoked by the background refresh job so interactive requests stay
// inside the freshness window.
func (s *Service) WarmCaches(ctx context.Context) error {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		s.cacheSet(ctx, recordKey(rec.Stored.Scope, rec.Subject), cachedRecord{Found: true, Record: rec})
	}
	overrides, err := s.repo.RoleOverrides(ctx)
	if err != nil {
		return err
	}
	s.cacheSet(ctx, "authz:overrides", overrides)
	return nil
}

func (s *Service) lookupRecord(ctx context.Context, key string, fetch func(context.Context) (Record, error)) (*authz.PermissionRecord, error) {
	var cached cachedRecord
	found, stale := s.cacheGet(ctx, key, &cached)
	if found && !stale {
		return storedOrNil(cached), nil
	}

	rec, err := fetch(ctx)
	switch {
	case err == nil:
		s.cacheSet(ctx, key, cachedRecord{Found: true, Record: rec})
		return &rec.Stored, nil
	case errors.Is(err, ErrNotFound):
		s.cacheSet(ctx, key, cachedRecord{})
		return nil, nil
	default:
		if found {
			s.logger.Warn("permission refresh failed, serving stale entry",
				slog.String("key", key), slog.Any("error", err))
			return storedOrNil(cached), nil
		}
		return nil, err
	}
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) (bool, bool) {
	if s.cache == nil {
		return false, false
	}
	found, stale, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
		return false, false
	}
	return found, stale
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *Service) invalidateRecord(ctx context.Context, scope authz.RecordScope, subject string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, recordKey(scope, subject)); err != nil {
		s.logger.Warn("cache invalidate failed", slog.String("subject", subject), slog.Any("error", err))
	}
}

func (s *Service) invalidateOverrides(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "authz:overrides"); err != nil {
		s.logger.Warn("cache invalidate failed", slog.String("key", "authz:overrides"), slog.Any("error", err))
	}
}

func recordKey(scope authz.RecordScope, subject string) string {
	return "authz:record:" + string(scope) + ":" + strings.ToLower(subject)
}

func storedOrNil(cached cachedRecord) *authz.PermissionRecord {
	if !cached.Found {
		return nil
	}
	stored := cached.Record.Stored
	return &stored
}

func toOverrideMap(rows []RoleOverride) authz.RoleSectionOverrides {
	if len(rows) == 0 {
		return nil
	}
	overrides := make(authz.RoleSectionOverrides, len(rows))
	for _, row := range rows {
		if len(row.VisibleSections) == 0 {
			continue
		}
		overrides[row.Role] = row.VisibleSections
	}
	return overrides
}
