package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturePermissionAliases(t *testing.T) {
	assert.Equal(t, "internal_transfers", FeaturePermission("money_transfer"))
	assert.Equal(t, "internal_transfers", FeaturePermission("complete_money_transfer"))
	assert.Equal(t, "customer_onboarding", FeaturePermission("kyc_onboarding"))
	assert.Equal(t, "platform_administration", FeaturePermission("rbac_management"))
	// Unmapped features gate on their own id.
	assert.Equal(t, "some_future_feature", FeaturePermission("some_future_feature"))
}

func TestPartitionFeaturesAdminFullCatalog(t *testing.T) {
	rc := ResolvedContext{
		Roles:   []UserRole{{RoleCode: "tenant_admin"}},
		IsAdmin: true,
	}

	set := PartitionFeatures(rc)
	require.Len(t, set.Available, len(FeatureCatalog))
	assert.Empty(t, set.Restricted)
	assert.Contains(t, set.Available, "money_transfer")
	assert.Contains(t, set.Available, "rbac_management")
	assert.Contains(t, set.Available, "system_health")
}

func TestPartitionFeaturesAliasedGrant(t *testing.T) {
	rc := ResolvedContext{
		Roles:       []UserRole{{RoleCode: "bank_teller"}},
		Permissions: map[string]Level{"internal_transfers": LevelWrite},
	}

	set := PartitionFeatures(rc)
	// Both aliases of internal_transfers are visible, nothing else is.
	assert.Contains(t, set.Available, "money_transfer")
	assert.Contains(t, set.Available, "complete_money_transfer")
	assert.NotContains(t, set.Available, "bill_payments")
	assert.Contains(t, set.Restricted, "bill_payments")
	assert.Len(t, set.Available, 2)
	assert.Len(t, set.Restricted, len(FeatureCatalog)-2)
}

func TestPartitionFeaturesPreservesCatalogOrder(t *testing.T) {
	rc := ResolvedContext{IsAdmin: true}
	set := PartitionFeatures(rc)
	assert.Equal(t, FeatureCatalog, set.Available)
}

func TestPartitionFeaturesNoGrants(t *testing.T) {
	rc := ResolvedContext{Permissions: map[string]Level{}}
	set := PartitionFeatures(rc)
	assert.Empty(t, set.Available)
	assert.Len(t, set.Restricted, len(FeatureCatalog))
}
