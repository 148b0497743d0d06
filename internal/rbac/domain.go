package rbac

import "time"

// Level is the granted degree of access to a permission code.
type Level string

// Permission levels, totally ordered None < Read < Write < Full.
const (
	LevelNone  Level = "none"
	LevelRead  Level = "read"
	LevelWrite Level = "write"
	LevelFull  Level = "full"
)

// levelRank encodes the lattice numerically. Zero means "no grant",
// distinct from an explicit none.
var levelRank = map[Level]int{
	LevelNone:  1,
	LevelRead:  2,
	LevelWrite: 3,
	LevelFull:  4,
}

// Rank returns the numeric position of the level, 0 for unknown values.
func (l Level) Rank() int {
	return levelRank[l]
}

// AtLeast reports whether l meets or exceeds the required level.
func (l Level) AtLeast(required Level) bool {
	return l.Rank() >= required.Rank()
}

// Grants reports whether the level allows anything at all.
func (l Level) Grants() bool {
	return l.Rank() > levelRank[LevelNone]
}

// ParseLevel normalizes a level string, defaulting to none.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelRead, LevelWrite, LevelFull:
		return Level(s)
	default:
		return LevelNone
	}
}

// LevelFromRank decodes the numeric encoding used by the store aggregation.
func LevelFromRank(rank int) Level {
	switch {
	case rank >= 4:
		return LevelFull
	case rank == 3:
		return LevelWrite
	case rank == 2:
		return LevelRead
	default:
		return LevelNone
	}
}

// AuthorityRoles bypass permission-level checks entirely.
var AuthorityRoles = []string{"ceo", "platform_admin", "tenant_admin"}

// ManagerRoles drive the isManager dashboard flag.
var ManagerRoles = []string{"ceo", "coo", "cfo", "branch_manager", "operations_manager"}

// LegacyAdminRole is the synthetic role code injected when the user record
// still carries role='admin' from the single-role era.
const LegacyAdminRole = "legacy_admin"

// Role is a tenant-scoped named bundle of permission grants. Lower level
// means higher authority; level orders listings only, it confers nothing.
type Role struct {
	ID          string
	Code        string
	Name        string
	Description string
	Level       int
}

// Permission is an atomic gated capability. The code is the stable
// contract between routes, features and roles.
type Permission struct {
	ID          string
	Code        string
	Name        string
	Description string
	Category    string
	Resource    string
	Action      string
}

// UserRole is a currently-effective role assignment.
type UserRole struct {
	RoleID        string
	RoleCode      string
	RoleName      string
	AssignedAt    time.Time
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

// RoleGrant ties a permission level to a role.
type RoleGrant struct {
	PermissionCode string
	Level          Level
}

// ResolvedContext is the request-scoped snapshot of a user's authorization
// state. It is built once per request and discarded at request end.
type ResolvedContext struct {
	TenantID    string
	UserID      string
	Roles       []UserRole
	Permissions map[string]Level
	IsAdmin     bool
}

// HasRole reports whether the snapshot contains the given role code.
func (rc ResolvedContext) HasRole(code string) bool {
	for _, r := range rc.Roles {
		if r.RoleCode == code {
			return true
		}
	}
	return false
}

// LevelFor returns the resolved level for a permission code, none when
// ungranted.
func (rc ResolvedContext) LevelFor(code string) Level {
	if level, ok := rc.Permissions[code]; ok {
		return level
	}
	return LevelNone
}

// Metrics is the role-derived convenience object consumed by dashboard
// widgets. It is not a security boundary.
type Metrics struct {
	TotalUsers          int    `json:"totalUsers"`
	ActiveRoles         int    `json:"activeRoles"`
	PermissionsCount    int    `json:"permissionsCount"`
	CanApproveTransfers bool   `json:"canApproveTransfers"`
	CanManageLoans      bool   `json:"canManageLoans"`
	IsManager           bool   `json:"isManager"`
	HighestRole         string `json:"highestRole"`
}
