package rbac

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	roles       []UserRole
	permissions map[string]Level
	userCount   int

	rolesErr       error
	permissionsErr error

	permissionCalls  int
	assignCalls      int
	deactivateCalls  int
	deactivatedCodes []string
	assignedActive   map[string]bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		permissions:    map[string]Level{},
		assignedActive: map[string]bool{},
	}
}

func (m *mockRepository) UserRoles(ctx context.Context, tenantID, userID string) ([]UserRole, error) {
	return m.roles, m.rolesErr
}

func (m *mockRepository) UserPermissions(ctx context.Context, tenantID, userID string) (map[string]Level, error) {
	m.permissionCalls++
	return m.permissions, m.permissionsErr
}

func (m *mockRepository) UserPermissionLevel(ctx context.Context, tenantID, userID, code string) (Level, error) {
	if level, ok := m.permissions[code]; ok {
		return level, nil
	}
	return LevelNone, nil
}

func (m *mockRepository) CheckPermission(ctx context.Context, tenantID, userID, code string, resourceID *string) (bool, error) {
	return m.permissions[code].Grants(), nil
}

func (m *mockRepository) ListRoles(ctx context.Context, tenantID string) ([]Role, error) {
	return nil, nil
}

func (m *mockRepository) UpsertAssignment(ctx context.Context, tenantID, userID, roleCode, assignedBy, reason string, effectiveFrom, effectiveTo *time.Time) error {
	m.assignCalls++
	m.assignedActive[roleCode] = true
	return nil
}

func (m *mockRepository) DeactivateAssignment(ctx context.Context, tenantID, userID, roleCode string) error {
	m.deactivateCalls++
	m.deactivatedCodes = append(m.deactivatedCodes, roleCode)
	m.assignedActive[roleCode] = false
	return nil
}

func (m *mockRepository) TenantUserCount(ctx context.Context, tenantID string) (int, error) {
	return m.userCount, nil
}

func TestResolveContextBuildsSnapshot(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{
		{RoleCode: "branch_manager", RoleName: "Branch Manager"},
		{RoleCode: "bank_teller", RoleName: "Bank Teller"},
	}
	repo.permissions = map[string]Level{"internal_transfers": LevelFull}

	service := NewService(repo)
	rc, err := service.ResolveContext(context.Background(), "tenant-1", "user-1", "")
	require.NoError(t, err)

	assert.Equal(t, "tenant-1", rc.TenantID)
	assert.Len(t, rc.Roles, 2)
	assert.Equal(t, LevelFull, rc.LevelFor("internal_transfers"))
	assert.False(t, rc.IsAdmin)
}

func TestResolveContextAuthorityRole(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{{RoleCode: "tenant_admin", RoleName: "Tenant Admin"}}

	service := NewService(repo)
	rc, err := service.ResolveContext(context.Background(), "tenant-1", "user-1", "")
	require.NoError(t, err)
	assert.True(t, rc.IsAdmin)
}

func TestResolveContextLegacyAdminFoldedIn(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{{RoleCode: "bank_teller", RoleName: "Bank Teller"}}

	service := NewService(repo)
	rc, err := service.ResolveContext(context.Background(), "tenant-1", "user-1", "admin")
	require.NoError(t, err)

	// The legacy single-role admin flag becomes one more resolved role
	// instead of a special case at every call site.
	assert.True(t, rc.HasRole(LegacyAdminRole))
	assert.True(t, rc.IsAdmin)

	regular, err := service.ResolveContext(context.Background(), "tenant-1", "user-1", "customer")
	require.NoError(t, err)
	assert.False(t, regular.IsAdmin)
}

func TestResolveContextPropagatesStoreErrors(t *testing.T) {
	repo := newMockRepository()
	repo.permissionsErr = errors.New("connection refused")

	service := NewService(repo)
	_, err := service.ResolveContext(context.Background(), "tenant-1", "user-1", "")
	require.Error(t, err)
}

func TestAvailableFeaturesAdminSkipsPermissionQuery(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{{RoleCode: "ceo"}}

	service := NewService(repo)
	set, err := service.AvailableFeatures(context.Background(), "tenant-1", "user-1", "")
	require.NoError(t, err)

	assert.Len(t, set.Available, len(FeatureCatalog))
	assert.Empty(t, set.Restricted)
	// The full-access short-circuit never consults the permission map.
	assert.Zero(t, repo.permissionCalls)
}

func TestAvailableFeaturesLegacyAdminFullCatalog(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{{RoleCode: "bank_teller"}}

	// A user with no authority assignment but role='admin' on the user
	// record gets the same full catalog the guard path grants them.
	service := NewService(repo)
	set, err := service.AvailableFeatures(context.Background(), "tenant-1", "user-1", "admin")
	require.NoError(t, err)

	assert.Len(t, set.Available, len(FeatureCatalog))
	assert.Empty(t, set.Restricted)
	assert.Zero(t, repo.permissionCalls)

	// A non-admin legacy value changes nothing.
	regular, err := service.AvailableFeatures(context.Background(), "tenant-1", "user-1", "customer")
	require.NoError(t, err)
	assert.Empty(t, regular.Available)
}

func TestAvailableFeaturesPartialGrant(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{{RoleCode: "bank_teller"}}
	repo.permissions = map[string]Level{"internal_transfers": LevelWrite}

	service := NewService(repo)
	set, err := service.AvailableFeatures(context.Background(), "tenant-1", "user-1", "")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"money_transfer", "complete_money_transfer"}, set.Available)
	assert.Contains(t, set.Restricted, "bill_payments")
}

func TestAssignRoleRequiresCode(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	err := service.AssignRole(context.Background(), "tenant-1", "user-1", "  ", "admin-1", "", nil, nil)
	require.Error(t, err)
	assert.Zero(t, repo.assignCalls)

	err = service.AssignRole(context.Background(), "tenant-1", "user-1", "bank_teller", "admin-1", "new hire", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.assignCalls)
}

func TestRemoveRoleIdempotent(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	require.NoError(t, service.RemoveRole(context.Background(), "tenant-1", "user-1", "bank_teller"))
	require.NoError(t, service.RemoveRole(context.Background(), "tenant-1", "user-1", "bank_teller"))
	assert.Equal(t, 2, repo.deactivateCalls)
	assert.False(t, repo.assignedActive["bank_teller"])

	// Re-assignment reactivates instead of duplicating.
	require.NoError(t, service.AssignRole(context.Background(), "tenant-1", "user-1", "bank_teller", "admin-1", "", nil, nil))
	assert.True(t, repo.assignedActive["bank_teller"])
}

func TestRoleBasedMetrics(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{
		{RoleCode: "branch_manager", RoleName: "Branch Manager"},
		{RoleCode: "bank_teller", RoleName: "Bank Teller"},
	}
	repo.permissions = map[string]Level{
		"transfer_approval": LevelFull,
		"loan_approval":     LevelRead,
	}
	repo.userCount = 42

	service := NewService(repo)
	metrics, err := service.RoleBasedMetrics(context.Background(), "tenant-1", "user-1")
	require.NoError(t, err)

	assert.True(t, metrics.IsManager)
	assert.True(t, metrics.CanApproveTransfers)
	assert.True(t, metrics.CanManageLoans)
	assert.Equal(t, 42, metrics.TotalUsers)
	assert.Equal(t, 2, metrics.ActiveRoles)
	assert.Equal(t, 2, metrics.PermissionsCount)
	assert.Equal(t, "Branch Manager", metrics.HighestRole)
}

func TestRoleBasedMetricsNonManager(t *testing.T) {
	repo := newMockRepository()
	repo.roles = []UserRole{{RoleCode: "bank_teller", RoleName: "Bank Teller"}}
	repo.permissions = map[string]Level{"transfer_approval": LevelWrite}
	repo.userCount = 42

	service := NewService(repo)
	metrics, err := service.RoleBasedMetrics(context.Background(), "tenant-1", "user-1")
	require.NoError(t, err)

	assert.False(t, metrics.IsManager)
	// write is not enough for transfer approval, and non-managers never
	// see the tenant user count.
	assert.False(t, metrics.CanApproveTransfers)
	assert.False(t, metrics.CanManageLoans)
	assert.Zero(t, metrics.TotalUsers)
}

func TestRoleBasedMetricsNoRoles(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	metrics, err := service.RoleBasedMetrics(context.Background(), "tenant-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "No Role", metrics.HighestRole)
	assert.Zero(t, metrics.ActiveRoles)
}
