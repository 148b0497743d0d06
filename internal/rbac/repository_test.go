package rbac

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Store-backed tests for the query semantics that live in SQL: the
// effective-date window, the max-across-roles aggregation and the
// assignment upsert. They run against a disposable PostgreSQL pointed to
// by OROKII_TEST_PG_DSN and are skipped when it is unset.

const storeDSNEnv = "OROKII_TEST_PG_DSN"

var storeSchema = []string{
	`CREATE SCHEMA IF NOT EXISTS tenant`,
	`CREATE TABLE IF NOT EXISTS tenant.rbac_roles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id TEXT NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		level INT NOT NULL DEFAULT 99,
		UNIQUE (tenant_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS tenant.rbac_permissions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		code TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS tenant.rbac_role_permissions (
		role_id UUID NOT NULL REFERENCES tenant.rbac_roles (id),
		permission_id UUID NOT NULL REFERENCES tenant.rbac_permissions (id),
		permission_level TEXT NOT NULL,
		PRIMARY KEY (role_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tenant.rbac_user_roles (
		tenant_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role_id UUID NOT NULL REFERENCES tenant.rbac_roles (id),
		is_active BOOLEAN NOT NULL DEFAULT true,
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		assigned_by TEXT,
		assignment_reason TEXT,
		effective_from TIMESTAMPTZ,
		effective_to TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (tenant_id, user_id, role_id)
	)`,
}

// storeRepository skips unless a store DSN is configured, then prepares
// the schema and hands back a repository with a fresh tenant id so test
// runs never see each other's rows.
func storeRepository(t *testing.T) (*Repository, *pgxpool.Pool, string) {
	t.Helper()
	dsn := os.Getenv(storeDSNEnv)
	if dsn == "" {
		t.Skipf("set %s to run store-backed tests", storeDSNEnv)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	for _, stmt := range storeSchema {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return NewRepository(pool), pool, uuid.NewString()
}

func seedRole(t *testing.T, pool *pgxpool.Pool, tenantID, code string, level int) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO tenant.rbac_roles (tenant_id, code, name, level)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		tenantID, code, code, level).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedPermission(t *testing.T, pool *pgxpool.Pool, code string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO tenant.rbac_permissions (code) VALUES ($1)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id`,
		code).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedGrant(t *testing.T, pool *pgxpool.Pool, roleID, permissionID string, level Level) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO tenant.rbac_role_permissions (role_id, permission_id, permission_level)
		VALUES ($1, $2, $3)`,
		roleID, permissionID, string(level))
	require.NoError(t, err)
}

func seedAssignment(t *testing.T, pool *pgxpool.Pool, tenantID, userID, roleID string, active bool, from, to *time.Time) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO tenant.rbac_user_roles (tenant_id, user_id, role_id, is_active, effective_from, effective_to)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tenantID, userID, roleID, active, from, to)
	require.NoError(t, err)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestUserRolesEffectiveWindowStore(t *testing.T) {
	repo, pool, tenantID := storeRepository(t)
	ctx := context.Background()
	userID := uuid.NewString()
	now := time.Now()

	manager := seedRole(t, pool, tenantID, "branch_manager", 3)
	teller := seedRole(t, pool, tenantID, "bank_teller", 8)
	future := seedRole(t, pool, tenantID, "auditor_future", 5)
	expired := seedRole(t, pool, tenantID, "auditor_expired", 6)
	inactive := seedRole(t, pool, tenantID, "auditor_inactive", 7)

	seedAssignment(t, pool, tenantID, userID, teller, true, nil, nil)
	seedAssignment(t, pool, tenantID, userID, manager, true, timePtr(now.Add(-time.Hour)), timePtr(now.Add(time.Hour)))
	seedAssignment(t, pool, tenantID, userID, future, true, timePtr(now.Add(time.Hour)), nil)
	seedAssignment(t, pool, tenantID, userID, expired, true, nil, timePtr(now.Add(-time.Hour)))
	seedAssignment(t, pool, tenantID, userID, inactive, false, nil, nil)

	roles, err := repo.UserRoles(ctx, tenantID, userID)
	require.NoError(t, err)

	codes := make([]string, 0, len(roles))
	for _, role := range roles {
		codes = append(codes, role.RoleCode)
	}
	// Only the open window and the currently-in-window assignment count,
	// most senior first.
	assert.Equal(t, []string{"branch_manager", "bank_teller"}, codes)
}

func TestUserPermissionsMaxAcrossRolesStore(t *testing.T) {
	repo, pool, tenantID := storeRepository(t)
	ctx := context.Background()
	userID := uuid.NewString()

	transfers := seedPermission(t, pool, "internal_transfers")
	loans := seedPermission(t, pool, "loan_approval")

	reader := seedRole(t, pool, tenantID, "teller_read", 8)
	writer := seedRole(t, pool, tenantID, "manager_full", 3)
	denier := seedRole(t, pool, tenantID, "restricted", 9)

	seedGrant(t, pool, reader, transfers, LevelRead)
	seedGrant(t, pool, writer, transfers, LevelFull)
	seedGrant(t, pool, denier, transfers, LevelNone)
	seedGrant(t, pool, denier, loans, LevelNone)

	for _, roleID := range []string{reader, writer, denier} {
		seedAssignment(t, pool, tenantID, userID, roleID, true, nil, nil)
	}

	permissions, err := repo.UserPermissions(ctx, tenantID, userID)
	require.NoError(t, err)

	// The explicit none from the third role cannot suppress the higher
	// grants, and a code granted only at none never appears.
	assert.Equal(t, LevelFull, permissions["internal_transfers"])
	_, granted := permissions["loan_approval"]
	assert.False(t, granted)
}

func TestUpsertAssignmentReactivatesStore(t *testing.T) {
	repo, pool, tenantID := storeRepository(t)
	ctx := context.Background()
	userID := uuid.NewString()

	seedRole(t, pool, tenantID, "bank_teller", 8)

	require.NoError(t, repo.UpsertAssignment(ctx, tenantID, userID, "bank_teller", "admin-1", "new hire", nil, nil))
	require.NoError(t, repo.DeactivateAssignment(ctx, tenantID, userID, "bank_teller"))

	roles, err := repo.UserRoles(ctx, tenantID, userID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	require.NoError(t, repo.UpsertAssignment(ctx, tenantID, userID, "bank_teller", "admin-1", "rehire", nil, nil))
	roles, err = repo.UserRoles(ctx, tenantID, userID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "bank_teller", roles[0].RoleCode)

	// Reactivation updates in place rather than duplicating the row.
	var count int
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tenant.rbac_user_roles
		WHERE tenant_id = $1 AND user_id = $2`,
		tenantID, userID).Scan(&count))
	assert.Equal(t, 1, count)
}
