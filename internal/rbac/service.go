package rbac

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RepositoryPort defines data access methods for the resolver.
type RepositoryPort interface {
	UserRoles(ctx context.Context, tenantID, userID string) ([]UserRole, error)
	UserPermissions(ctx context.Context, tenantID, userID string) (map[string]Level, error)
	UserPermissionLevel(ctx context.Context, tenantID, userID, code string) (Level, error)
	CheckPermission(ctx context.Context, tenantID, userID, code string, resourceID *string) (bool, error)
	ListRoles(ctx context.Context, tenantID string) ([]Role, error)
	UpsertAssignment(ctx context.Context, tenantID, userID, roleCode, assignedBy, reason string, effectiveFrom, effectiveTo *time.Time) error
	DeactivateAssignment(ctx context.Context, tenantID, userID, roleCode string) error
	TenantUserCount(ctx context.Context, tenantID string) (int, error)
}

// Service resolves a user's authorization state and manages role
// assignments. Resolution is always fresh from the store; the only reuse
// is the per-request snapshot taken by the middleware.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

var titleCaser = cases.Title(language.English)

// GetUserRoles returns all currently-effective role assignments, most
// senior first. An empty result is not an error.
func (s *Service) GetUserRoles(ctx context.Context, tenantID, userID string) ([]UserRole, error) {
	return s.repo.UserRoles(ctx, tenantID, userID)
}

// GetUserPermissions returns the flattened code to level map.
func (s *Service) GetUserPermissions(ctx context.Context, tenantID, userID string) (map[string]Level, error) {
	return s.repo.UserPermissions(ctx, tenantID, userID)
}

// GetUserPermissionLevel returns the maximum grant level for one code.
func (s *Service) GetUserPermissionLevel(ctx context.Context, tenantID, userID, code string) (Level, error) {
	return s.repo.UserPermissionLevel(ctx, tenantID, userID, code)
}

// CheckUserPermission is the resource-aware boolean check.
func (s *Service) CheckUserPermission(ctx context.Context, tenantID, userID, code string, resourceID *string) (bool, error) {
	return s.repo.CheckPermission(ctx, tenantID, userID, code, resourceID)
}

// ResolveContext builds the request-scoped snapshot. Roles and
// permissions are fetched concurrently. A legacy single-role admin value
// on the user record is folded in as one more synthetic role rather than
// special-cased at call sites.
func (s *Service) ResolveContext(ctx context.Context, tenantID, userID, legacyRole string) (ResolvedContext, error) {
	var (
		roles       []UserRole
		permissions map[string]Level
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.repo.UserRoles(gctx, tenantID, userID)
		return err
	})
	g.Go(func() error {
		var err error
		permissions, err = s.repo.UserPermissions(gctx, tenantID, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ResolvedContext{}, err
	}

	rc := ResolvedContext{
		TenantID:    tenantID,
		UserID:      userID,
		Roles:       foldLegacyAdmin(roles, legacyRole),
		Permissions: permissions,
	}
	rc.IsAdmin = isAuthority(rc)
	return rc, nil
}

// AvailableFeatures partitions the feature catalog for a user. The legacy
// single-role value participates in the full-access short-circuit exactly
// as it does in context resolution, so feature visibility can never drift
// from the guard path for legacy admins.
func (s *Service) AvailableFeatures(ctx context.Context, tenantID, userID, legacyRole string) (FeatureSet, error) {
	roles, err := s.repo.UserRoles(ctx, tenantID, userID)
	if err != nil {
		return FeatureSet{}, err
	}
	rc := ResolvedContext{TenantID: tenantID, UserID: userID, Roles: foldLegacyAdmin(roles, legacyRole)}
	rc.IsAdmin = isAuthority(rc)
	if rc.IsAdmin {
		return PartitionFeatures(rc), nil
	}

	permissions, err := s.repo.UserPermissions(ctx, tenantID, userID)
	if err != nil {
		return FeatureSet{}, err
	}
	rc.Permissions = permissions
	return PartitionFeatures(rc), nil
}

// AssignRole upserts a role assignment, reactivating a removed one.
func (s *Service) AssignRole(ctx context.Context, tenantID, userID, roleCode, assignedBy, reason string, effectiveFrom, effectiveTo *time.Time) error {
	roleCode = strings.TrimSpace(roleCode)
	if roleCode == "" {
		return errors.New("rbac: role code required")
	}
	return s.repo.UpsertAssignment(ctx, tenantID, userID, roleCode, assignedBy, strings.TrimSpace(reason), effectiveFrom, effectiveTo)
}

// RemoveRole soft-deactivates an assignment. Removing an absent or
// already-inactive assignment is not an error.
func (s *Service) RemoveRole(ctx context.Context, tenantID, userID, roleCode string) error {
	return s.repo.DeactivateAssignment(ctx, tenantID, userID, strings.TrimSpace(roleCode))
}

// ListRoles returns the tenant's role catalog.
func (s *Service) ListRoles(ctx context.Context, tenantID string) ([]Role, error) {
	return s.repo.ListRoles(ctx, tenantID)
}

// RoleBasedMetrics derives the dashboard convenience object. The tenant
// user count is only exposed to managers.
func (s *Service) RoleBasedMetrics(ctx context.Context, tenantID, userID string) (Metrics, error) {
	roles, err := s.repo.UserRoles(ctx, tenantID, userID)
	if err != nil {
		return Metrics{}, err
	}
	permissions, err := s.repo.UserPermissions(ctx, tenantID, userID)
	if err != nil {
		return Metrics{}, err
	}

	rc := ResolvedContext{Roles: roles, Permissions: permissions}
	isManager := hasAnyRole(rc, ManagerRoles)

	metrics := Metrics{
		ActiveRoles:         len(roles),
		PermissionsCount:    len(permissions),
		CanApproveTransfers: rc.LevelFor("transfer_approval") == LevelFull,
		CanManageLoans:      rc.LevelFor("loan_approval").Grants(),
		IsManager:           isManager,
		HighestRole:         "No Role",
	}
	if len(roles) > 0 {
		metrics.HighestRole = roles[0].RoleName
	}
	if isManager {
		count, err := s.repo.TenantUserCount(ctx, tenantID)
		if err != nil {
			return Metrics{}, err
		}
		metrics.TotalUsers = count
	}
	return metrics, nil
}

// foldLegacyAdmin appends the synthetic legacy role when the user record
// still carries role='admin' from the single-role era.
func foldLegacyAdmin(roles []UserRole, legacyRole string) []UserRole {
	if !strings.EqualFold(strings.TrimSpace(legacyRole), "admin") {
		return roles
	}
	return append(roles, UserRole{
		RoleCode: LegacyAdminRole,
		RoleName: titleCaser.String(strings.ReplaceAll(LegacyAdminRole, "_", " ")),
	})
}

func isAuthority(rc ResolvedContext) bool {
	if rc.HasRole(LegacyAdminRole) {
		return true
	}
	return hasAnyRole(rc, AuthorityRoles)
}
