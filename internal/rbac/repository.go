package rbac

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed access to the role/permission
// store. All queries are tenant-scoped reads except the assignment
// mutations, which use upsert / soft-deactivate semantics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserRoles returns the currently-effective role assignments for a user,
// most senior role first.
func (r *Repository) UserRoles(ctx context.Context, tenantID, userID string) ([]UserRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ur.role_id, ro.code, ro.name, ur.assigned_at, ur.effective_from, ur.effective_to
		FROM tenant.rbac_user_roles ur
		JOIN tenant.rbac_roles ro ON ur.role_id = ro.id
		WHERE ur.tenant_id = $1
		  AND ur.user_id = $2
		  AND ur.is_active = true
		  AND (ur.effective_from IS NULL OR ur.effective_from <= NOW())
		  AND (ur.effective_to IS NULL OR ur.effective_to > NOW())
		ORDER BY ro.level ASC`,
		tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []UserRole
	for rows.Next() {
		var role UserRole
		if err := rows.Scan(&role.RoleID, &role.RoleCode, &role.RoleName, &role.AssignedAt, &role.EffectiveFrom, &role.EffectiveTo); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// UserPermissions returns the flattened permission map for a user, taking
// the maximum level per code across effective roles. Explicit none grants
// are excluded from the aggregation input so they cannot suppress a higher
// grant from another role.
func (r *Repository) UserPermissions(ctx context.Context, tenantID, userID string) (map[string]Level, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.code,
		       COALESCE(MAX(
		           CASE rp.permission_level
		               WHEN 'full' THEN 4
		               WHEN 'write' THEN 3
		               WHEN 'read' THEN 2
		               WHEN 'none' THEN 1
		               ELSE 0
		           END
		       ), 0) AS max_level
		FROM tenant.rbac_user_roles ur
		JOIN tenant.rbac_role_permissions rp ON ur.role_id = rp.role_id
		JOIN tenant.rbac_permissions p ON rp.permission_id = p.id
		WHERE ur.tenant_id = $1
		  AND ur.user_id = $2
		  AND ur.is_active = true
		  AND (ur.effective_from IS NULL OR ur.effective_from <= NOW())
		  AND (ur.effective_to IS NULL OR ur.effective_to > NOW())
		  AND rp.permission_level != 'none'
		GROUP BY p.code`,
		tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	permissions := make(map[string]Level)
	for rows.Next() {
		var code string
		var rank int
		if err := rows.Scan(&code, &rank); err != nil {
			return nil, err
		}
		permissions[code] = LevelFromRank(rank)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return permissions, nil
}

// UserPermissionLevel delegates the single-code lookup to the store-side
// decision function.
func (r *Repository) UserPermissionLevel(ctx context.Context, tenantID, userID, code string) (Level, error) {
	var level *string
	err := r.pool.QueryRow(ctx,
		`SELECT tenant.get_user_permission_level($1, $2, $3)`,
		tenantID, userID, code).Scan(&level)
	if err != nil {
		return LevelNone, err
	}
	if level == nil {
		return LevelNone, nil
	}
	return ParseLevel(*level), nil
}

// CheckPermission is the resource-aware boolean check, delegated to the
// store so level comparison is never reimplemented by callers.
func (r *Repository) CheckPermission(ctx context.Context, tenantID, userID, code string, resourceID *string) (bool, error) {
	var allowed *bool
	err := r.pool.QueryRow(ctx,
		`SELECT tenant.check_user_permission($1, $2, $3, $4)`,
		tenantID, userID, code, resourceID).Scan(&allowed)
	if err != nil {
		return false, err
	}
	return allowed != nil && *allowed, nil
}

// ListRoles returns all roles for a tenant ordered by seniority.
func (r *Repository) ListRoles(ctx context.Context, tenantID string) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, COALESCE(description, ''), level
		FROM tenant.rbac_roles
		WHERE tenant_id = $1
		ORDER BY level ASC, code`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Code, &role.Name, &role.Description, &role.Level); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// UpsertAssignment assigns a role to a user, reactivating a previously
// removed assignment instead of creating a duplicate row.
func (r *Repository) UpsertAssignment(ctx context.Context, tenantID, userID, roleCode, assignedBy, reason string, effectiveFrom, effectiveTo *time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenant.rbac_user_roles (
			tenant_id, user_id, role_id, assigned_by, assignment_reason,
			effective_from, effective_to
		) VALUES (
			$1, $2,
			(SELECT id FROM tenant.rbac_roles WHERE tenant_id = $1 AND code = $3),
			$4, $5, $6, $7
		)
		ON CONFLICT (tenant_id, user_id, role_id)
		DO UPDATE SET
			is_active = true,
			effective_from = EXCLUDED.effective_from,
			effective_to = EXCLUDED.effective_to,
			updated_at = NOW()`,
		tenantID, userID, roleCode, assignedBy, reason, effectiveFrom, effectiveTo)
	return err
}

// DeactivateAssignment soft-removes a role from a user. Already-inactive
// assignments are left as-is, so repeated calls are harmless.
func (r *Repository) DeactivateAssignment(ctx context.Context, tenantID, userID, roleCode string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tenant.rbac_user_roles
		SET is_active = false, updated_at = NOW()
		WHERE tenant_id = $1
		  AND user_id = $2
		  AND role_id = (SELECT id FROM tenant.rbac_roles WHERE tenant_id = $1 AND code = $3)`,
		tenantID, userID, roleCode)
	return err
}

// TenantUserCount reports how many users belong to the tenant.
func (r *Repository) TenantUserCount(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tenant.users WHERE tenant_id = $1`,
		tenantID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
