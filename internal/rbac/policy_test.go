package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	ordered := []Level{LevelNone, LevelRead, LevelWrite, LevelFull}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank())
	}

	assert.True(t, LevelFull.AtLeast(LevelRead))
	assert.True(t, LevelWrite.AtLeast(LevelWrite))
	assert.False(t, LevelRead.AtLeast(LevelWrite))
	assert.False(t, LevelNone.Grants())
	assert.True(t, LevelRead.Grants())

	// Unknown strings never grant anything.
	assert.Equal(t, LevelNone, ParseLevel("admin"))
	assert.Equal(t, 0, Level("bogus").Rank())
}

func TestLevelFromRank(t *testing.T) {
	assert.Equal(t, LevelFull, LevelFromRank(4))
	assert.Equal(t, LevelWrite, LevelFromRank(3))
	assert.Equal(t, LevelRead, LevelFromRank(2))
	assert.Equal(t, LevelNone, LevelFromRank(1))
	assert.Equal(t, LevelNone, LevelFromRank(0))
}

func TestEvaluateLevelThreshold(t *testing.T) {
	rc := ResolvedContext{
		Permissions: map[string]Level{"internal_transfers": LevelRead},
	}

	allowed := Evaluate(rc, Requirement{AnyOfCodes: []string{"internal_transfers"}, MinLevel: LevelRead})
	assert.True(t, allowed.Allowed)

	denied := Evaluate(rc, Requirement{AnyOfCodes: []string{"internal_transfers"}, MinLevel: LevelWrite})
	require.False(t, denied.Allowed)
	assert.Equal(t, "insufficient permission level", denied.Reason)
	assert.Equal(t, LevelRead, denied.CurrentLevel)

	ungranted := Evaluate(rc, Requirement{AnyOfCodes: []string{"bill_payments"}, MinLevel: LevelRead})
	require.False(t, ungranted.Allowed)
	assert.Equal(t, "permission not granted", ungranted.Reason)
	assert.Equal(t, LevelNone, ungranted.CurrentLevel)
}

func TestEvaluateAnyOfCodes(t *testing.T) {
	rc := ResolvedContext{
		Permissions: map[string]Level{"b": LevelWrite},
	}
	decision := Evaluate(rc, Requirement{AnyOfCodes: []string{"a", "b"}, MinLevel: LevelWrite})
	require.True(t, decision.Allowed)
	assert.Equal(t, "b", decision.MatchedCode)
}

func TestEvaluateAdminBypass(t *testing.T) {
	rc := ResolvedContext{IsAdmin: true, Permissions: map[string]Level{}}

	decision := Evaluate(rc, Requirement{AnyOfCodes: []string{"anything"}, MinLevel: LevelFull, BypassAdmin: true})
	require.True(t, decision.Allowed)
	assert.True(t, decision.Bypassed)

	// Without the bypass flag admins are held to the lattice like anyone.
	strict := Evaluate(rc, Requirement{AnyOfCodes: []string{"anything"}, MinLevel: LevelFull})
	assert.False(t, strict.Allowed)
}

func TestEvaluateRoleAllowList(t *testing.T) {
	rc := ResolvedContext{
		Roles:       []UserRole{{RoleCode: "bank_teller"}},
		Permissions: map[string]Level{"internal_transfers": LevelFull},
	}

	// The role condition is mandatory even when the level is sufficient.
	denied := Evaluate(rc, Requirement{
		AnyOfRoles: []string{"branch_manager"},
		AnyOfCodes: []string{"internal_transfers"},
		MinLevel:   LevelRead,
	})
	require.False(t, denied.Allowed)
	assert.Equal(t, "role not permitted", denied.Reason)

	allowed := Evaluate(rc, Requirement{
		AnyOfRoles: []string{"branch_manager", "bank_teller"},
		AnyOfCodes: []string{"internal_transfers"},
		MinLevel:   LevelRead,
	})
	assert.True(t, allowed.Allowed)
}

func TestEvaluateDefaultMinLevel(t *testing.T) {
	rc := ResolvedContext{Permissions: map[string]Level{"x": LevelRead}}
	decision := Evaluate(rc, Requirement{AnyOfCodes: []string{"x"}})
	assert.True(t, decision.Allowed)
}

func TestFeatureVisibleVersusActionPermitted(t *testing.T) {
	rc := ResolvedContext{Permissions: map[string]Level{"bill_payments": LevelRead}}

	// Visibility only needs some grant; acting needs the threshold.
	assert.True(t, FeatureVisible(rc, "bill_payments"))
	assert.False(t, ActionPermitted(rc, "bill_payments", LevelWrite))
	assert.True(t, ActionPermitted(rc, "bill_payments", LevelRead))
	assert.False(t, FeatureVisible(rc, "personal_loans"))
}
