package rbac

// FeatureCatalog is the fixed list of banking features exposed to
// dashboards and menus, in presentation order.
var FeatureCatalog = []string{
	"money_transfer", "flexible_savings", "target_savings", "group_savings",
	"locked_savings", "save_as_you_transact", "personal_loans", "business_loans",
	"quick_loans", "bill_payments", "kyc_onboarding", "multi_account_management",
	"transaction_management", "transaction_reversal_system", "external_transfers_nibss",
	"complete_money_transfer", "enhanced_money_transfer", "rbac_management",
	"tenant_management", "platform_analytics", "system_health",
}

// featurePermissions maps feature identifiers to the permission code that
// gates them. Several features alias to the same underlying code. This is
// the single source of truth; the navigation package imports it rather
// than declaring its own copy.
var featurePermissions = map[string]string{
	"money_transfer":              "internal_transfers",
	"external_transfers_nibss":    "external_transfers",
	"complete_money_transfer":     "internal_transfers",
	"enhanced_money_transfer":     "bulk_transfers",
	"bulk_transfers":              "bulk_transfers",
	"transfer_templates":          "bulk_transfers",
	"flexible_savings":            "flexible_savings",
	"target_savings":              "target_savings",
	"group_savings":               "group_savings",
	"locked_savings":              "locked_savings",
	"save_as_you_transact":        "save_as_you_transact",
	"save_as_transact":            "save_as_you_transact",
	"personal_loans":              "personal_loans",
	"business_loans":              "business_loans",
	"quick_loans":                 "quick_loans",
	"bill_payments":               "bill_payments",
	"kyc_onboarding":              "customer_onboarding",
	"multi_account_management":    "user_management",
	"user_management":             "user_management",
	"transaction_management":      "transaction_monitoring",
	"transaction_reversal_system": "transfer_reversal",
	"transaction_reversal":        "transfer_reversal",
	"compliance_reports":          "generate_compliance_reports",
	"analytics_dashboard":         "multi_tenant_reporting",
	"platform":                    "platform_administration",
	"compliance":                  "generate_compliance_reports",
	"rbac_management":             "platform_administration",
	"tenant_management":           "tenant_management",
	"platform_analytics":          "multi_tenant_reporting",
	"system_health":               "system_configuration",
}

// FeaturePermission resolves the permission code gating a feature,
// falling back to the feature id itself when unmapped.
func FeaturePermission(feature string) string {
	if code, ok := featurePermissions[feature]; ok {
		return code
	}
	return feature
}

// FeatureSet partitions the catalog for one user.
type FeatureSet struct {
	Available  []string `json:"available"`
	Restricted []string `json:"restricted"`
}

// PartitionFeatures classifies the catalog into available and restricted
// sets for the snapshot, preserving catalog order. Authority roles see the
// full catalog.
func PartitionFeatures(rc ResolvedContext) FeatureSet {
	if rc.IsAdmin {
		available := make([]string, len(FeatureCatalog))
		copy(available, FeatureCatalog)
		return FeatureSet{Available: available, Restricted: []string{}}
	}

	set := FeatureSet{Available: []string{}, Restricted: []string{}}
	for _, feature := range FeatureCatalog {
		if FeatureVisible(rc, FeaturePermission(feature)) {
			set.Available = append(set.Available, feature)
		} else {
			set.Restricted = append(set.Restricted, feature)
		}
	}
	return set
}
