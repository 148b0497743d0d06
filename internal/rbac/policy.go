package rbac

// Requirement is a declarative access rule evaluated against a resolved
// snapshot. All populated conditions must hold: when AnyOfRoles is set the
// caller must hold one of the roles, and when AnyOfCodes is set the caller
// must meet MinLevel on at least one of the codes. Empty conditions are
// skipped.
//
// Every gating surface (route guards, the feature gate, the navigation
// filter) builds a Requirement and calls Evaluate so server and client
// visibility can never drift apart.
type Requirement struct {
	AnyOfCodes []string
	MinLevel   Level
	AnyOfRoles []string
	// BypassAdmin lets authority roles short-circuit the permission-level
	// conditions. Role allow-lists are still enforced when set.
	BypassAdmin bool
}

// Decision is the outcome of evaluating a Requirement.
type Decision struct {
	Allowed bool
	// Bypassed is true when an authority role short-circuited the check.
	Bypassed bool
	// Reason is a human-readable denial cause, empty when allowed.
	Reason string
	// MatchedCode is the permission code that satisfied the requirement.
	MatchedCode string
	// CurrentLevel is the caller's level on the first required code,
	// reported on level-based denials.
	CurrentLevel Level
}

// Evaluate applies a Requirement to a resolved snapshot.
func Evaluate(rc ResolvedContext, req Requirement) Decision {
	if len(req.AnyOfRoles) > 0 && !hasAnyRole(rc, req.AnyOfRoles) {
		return Decision{Reason: "role not permitted"}
	}

	if len(req.AnyOfCodes) == 0 {
		return Decision{Allowed: true}
	}

	if req.BypassAdmin && rc.IsAdmin {
		return Decision{Allowed: true, Bypassed: true}
	}

	minLevel := req.MinLevel
	if minLevel == "" {
		minLevel = LevelRead
	}

	for _, code := range req.AnyOfCodes {
		if rc.LevelFor(code).AtLeast(minLevel) {
			return Decision{Allowed: true, MatchedCode: code}
		}
	}

	current := rc.LevelFor(req.AnyOfCodes[0])
	if !current.Grants() {
		return Decision{Reason: "permission not granted", CurrentLevel: current}
	}
	return Decision{Reason: "insufficient permission level", CurrentLevel: current}
}

// FeatureVisible is the coarse visibility policy: any level above none on
// the required code, or an authority role. Used for feature catalogs and
// menus.
func FeatureVisible(rc ResolvedContext, code string) bool {
	return Evaluate(rc, Requirement{
		AnyOfCodes:  []string{code},
		MinLevel:    LevelRead,
		BypassAdmin: true,
	}).Allowed
}

// ActionPermitted is the strict policy gating actual operations: the
// caller must meet the level threshold (or hold an authority role).
func ActionPermitted(rc ResolvedContext, code string, level Level) bool {
	return Evaluate(rc, Requirement{
		AnyOfCodes:  []string{code},
		MinLevel:    level,
		BypassAdmin: true,
	}).Allowed
}

func hasAnyRole(rc ResolvedContext, codes []string) bool {
	for _, code := range codes {
		if rc.HasRole(code) {
			return true
		}
	}
	return false
}
