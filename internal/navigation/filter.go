package navigation

import (
	"sort"

	"github.com/orokiipay/orokiipay/internal/rbac"
)

// Group is one category of accessible navigation items.
type Group struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// Accessible filters the catalog for one user. An item is shown only when
// the user's primary role is in the item's allow-list AND the resolved
// level for the item's permission meets its minimum. This is deliberately
// stricter than the feature gate: menus dual-gate, feature visibility
// does not.
func Accessible(roleCode string, permissions map[string]rbac.Level) []Item {
	rc := rbac.ResolvedContext{
		Roles:       []rbac.UserRole{{RoleCode: roleCode}},
		Permissions: permissions,
	}

	var items []Item
	for _, item := range Catalog {
		decision := rbac.Evaluate(rc, rbac.Requirement{
			AnyOfRoles: item.RolesWithAccess,
			AnyOfCodes: []string{item.RequiredPermission},
			MinLevel:   item.MinPermissionLevel,
		})
		if decision.Allowed {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority < items[j].Priority
	})
	return items
}

// Grouped partitions accessible items into category groups in fixed
// order, dropping empty categories.
func Grouped(roleCode string, permissions map[string]rbac.Level) []Group {
	items := Accessible(roleCode, permissions)
	byCategory := make(map[string][]Item)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	var groups []Group
	for _, category := range CategoryOrder {
		if members := byCategory[category]; len(members) > 0 {
			groups = append(groups, Group{Category: category, Items: members})
		}
	}
	return groups
}
