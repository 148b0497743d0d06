package audit

import "time"

// Entry is one permission decision to be recorded. Records are append
// only; nothing in this subsystem mutates or deletes them apart from the
// retention purge.
type Entry struct {
	TenantID       string            `json:"tenantId"`
	UserID         string            `json:"userId"`
	Resource       string            `json:"resource"`
	Action         string            `json:"action"`
	PermissionCode string            `json:"permissionCode"`
	AccessGranted  bool              `json:"accessGranted"`
	DenialReason   string            `json:"denialReason,omitempty"`
	RequestContext map[string]string `json:"requestContext,omitempty"`
}

// Record is a persisted audit row.
type Record struct {
	ID             string            `json:"id"`
	TenantID       string            `json:"tenantId"`
	UserID         string            `json:"userId"`
	Resource       string            `json:"resource"`
	Action         string            `json:"action"`
	PermissionCode string            `json:"permissionCode"`
	AccessGranted  bool              `json:"accessGranted"`
	DenialReason   string            `json:"denialReason,omitempty"`
	RequestContext map[string]string `json:"requestContext,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// TrailFilters narrows the audit trail query.
type TrailFilters struct {
	TenantID string
	UserID   string
	From     time.Time
	To       time.Time
	// DeniedOnly keeps only accessGranted=false rows.
	DeniedOnly bool
	Page       int
	PageSize   int
}

// PagingInfo carries pagination state for trail results.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

// Result bundles trail rows with paging information.
type Result struct {
	Rows   []Record   `json:"rows"`
	Paging PagingInfo `json:"paging"`
}
