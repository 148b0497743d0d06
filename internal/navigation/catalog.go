package navigation

import "github.com/orokiipay/orokiipay/internal/rbac"

// Item is one navigation entry shown to banking staff. Access requires
// both membership in RolesWithAccess and the minimum permission level.
type Item struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Subtitle           string     `json:"subtitle,omitempty"`
	Route              string     `json:"route"`
	RequiredPermission string     `json:"requiredPermission"`
	MinPermissionLevel rbac.Level `json:"minPermissionLevel"`
	Category           string     `json:"category"`
	Priority           int        `json:"priority"`
	RolesWithAccess    []string   `json:"-"`
}

// Categories in fixed presentation order.
const (
	CategoryQuick      = "quick"
	CategoryOperations = "operations"
	CategoryManagement = "management"
	CategoryCompliance = "compliance"
	CategoryPlatform   = "platform"
)

// CategoryOrder fixes how category groups are presented.
var CategoryOrder = []string{
	CategoryQuick, CategoryOperations, CategoryManagement, CategoryCompliance, CategoryPlatform,
}

// Catalog is the full navigation item set for the banking app.
var Catalog = []Item{
	{
		ID: "quick_transfer", Title: "Quick Transfer", Subtitle: "Send money now",
		Route: "/transfer/quick", RequiredPermission: "internal_transfers",
		MinPermissionLevel: rbac.LevelWrite, Category: CategoryQuick, Priority: 1,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "head_teller", "bank_teller"},
	},
	{
		ID: "customer_lookup", Title: "Customer Lookup", Subtitle: "Find customer info",
		Route: "/customers/search", RequiredPermission: "view_customer_accounts",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryQuick, Priority: 2,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "customer_service", "head_teller", "bank_teller", "relationship_manager"},
	},
	{
		ID: "balance_inquiry", Title: "Balance Inquiry", Subtitle: "Check account balance",
		Route: "/accounts/balance", RequiredPermission: "view_customer_accounts",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryQuick, Priority: 3,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "customer_service", "head_teller", "bank_teller", "relationship_manager"},
	},
	{
		ID: "transaction_status", Title: "Transaction Status", Subtitle: "Track transfers",
		Route: "/transactions/status", RequiredPermission: "view_transactions",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryQuick, Priority: 4,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "customer_service", "head_teller", "bank_teller", "compliance_officer", "audit_officer"},
	},
	{
		ID: "money_transfers", Title: "Money Transfers", Subtitle: "All transfer options",
		Route: "/transfers", RequiredPermission: "internal_transfers",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryOperations, Priority: 1,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "head_teller", "bank_teller"},
	},
	{
		ID: "account_management", Title: "Account Management", Subtitle: "Manage customer accounts",
		Route: "/accounts", RequiredPermission: "manage_customer_accounts",
		MinPermissionLevel: rbac.LevelWrite, Category: CategoryOperations, Priority: 2,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "customer_service", "relationship_manager"},
	},
	{
		ID: "savings_products", Title: "Savings Products", Subtitle: "Savings & deposits",
		Route: "/savings", RequiredPermission: "manage_savings_products",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryOperations, Priority: 3,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "customer_service", "relationship_manager"},
	},
	{
		ID: "loan_management", Title: "Loan Management", Subtitle: "Loans & credit",
		Route: "/loans", RequiredPermission: "manage_loan_products",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryOperations, Priority: 4,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "credit_manager", "loan_officer", "credit_analyst"},
	},
	{
		ID: "bill_payments", Title: "Bill Payments", Subtitle: "Pay utilities & bills",
		Route: "/payments/bills", RequiredPermission: "bill_payments",
		MinPermissionLevel: rbac.LevelWrite, Category: CategoryOperations, Priority: 5,
		RolesWithAccess: []string{"ceo", "deputy_md", "branch_manager", "operations_manager", "customer_service", "head_teller", "bank_teller"},
	},
	{
		ID: "user_management", Title: "User Management", Subtitle: "Staff & roles",
		Route: "/admin/users", RequiredPermission: "manage_users",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryManagement, Priority: 1,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "branch_manager"},
	},
	{
		ID: "transaction_monitoring", Title: "Transaction Monitoring", Subtitle: "Monitor all activities",
		Route: "/monitoring/transactions", RequiredPermission: "monitor_transactions",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryManagement, Priority: 2,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "branch_manager", "operations_manager", "compliance_officer", "audit_officer"},
	},
	{
		ID: "financial_reports", Title: "Financial Reports", Subtitle: "Analytics & insights",
		Route: "/reports/financial", RequiredPermission: "view_financial_reports",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryManagement, Priority: 3,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "branch_manager", "operations_manager", "credit_manager", "compliance_officer", "audit_officer"},
	},
	{
		ID: "branch_performance", Title: "Branch Performance", Subtitle: "Performance metrics",
		Route: "/reports/branches", RequiredPermission: "view_branch_reports",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryManagement, Priority: 4,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "branch_manager", "operations_manager"},
	},
	{
		ID: "compliance_monitoring", Title: "Compliance Monitoring", Subtitle: "CBN compliance",
		Route: "/compliance/monitoring", RequiredPermission: "compliance_monitoring",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryCompliance, Priority: 1,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "compliance_officer", "audit_officer"},
	},
	{
		ID: "audit_trail", Title: "Audit Trail", Subtitle: "Activity logs",
		Route: "/audit/trail", RequiredPermission: "audit_trail",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryCompliance, Priority: 2,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "compliance_officer", "audit_officer"},
	},
	{
		ID: "risk_assessment", Title: "Risk Assessment", Subtitle: "Risk management",
		Route: "/risk/assessment", RequiredPermission: "risk_management",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryCompliance, Priority: 3,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "compliance_officer", "audit_officer", "credit_manager", "credit_analyst"},
	},
	{
		ID: "regulatory_reports", Title: "Regulatory Reports", Subtitle: "CBN submissions",
		Route: "/compliance/reports", RequiredPermission: "regulatory_reporting",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryCompliance, Priority: 4,
		RolesWithAccess: []string{"platform_admin", "ceo", "deputy_md", "compliance_officer", "audit_officer"},
	},
	{
		ID: "tenant_management", Title: "Tenant Management", Subtitle: "Multi-bank platform",
		Route: "/platform/tenants", RequiredPermission: "platform_administration",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryPlatform, Priority: 1,
		RolesWithAccess: []string{"platform_admin"},
	},
	{
		ID: "system_configuration", Title: "System Configuration", Subtitle: "Platform settings",
		Route: "/platform/config", RequiredPermission: "platform_administration",
		MinPermissionLevel: rbac.LevelWrite, Category: CategoryPlatform, Priority: 2,
		RolesWithAccess: []string{"platform_admin"},
	},
	{
		ID: "system_monitoring", Title: "System Monitoring", Subtitle: "Platform health",
		Route: "/platform/monitoring", RequiredPermission: "platform_administration",
		MinPermissionLevel: rbac.LevelRead, Category: CategoryPlatform, Priority: 3,
		RolesWithAccess: []string{"platform_admin"},
	},
}
