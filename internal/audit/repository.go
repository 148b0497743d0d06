package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists audit rows in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertDecision appends one permission decision.
func (r *Repository) InsertDecision(ctx context.Context, entry Entry) error {
	var requestContext []byte
	if entry.RequestContext != nil {
		data, err := json.Marshal(entry.RequestContext)
		if err != nil {
			return err
		}
		requestContext = data
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenant.rbac_permission_audit (
			tenant_id, user_id, resource, action, permission_code,
			access_granted, denial_reason, request_context
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`,
		entry.TenantID, entry.UserID, entry.Resource, entry.Action,
		entry.PermissionCode, entry.AccessGranted, entry.DenialReason, requestContext)
	return err
}

// TrailWindow returns one page of audit rows, newest first. The caller
// passes limit = pageSize+1 to detect a following page.
func (r *Repository) TrailWindow(ctx context.Context, filters TrailFilters, limit, offset int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, user_id, resource, action, permission_code,
		       access_granted, COALESCE(denial_reason, ''), request_context, created_at
		FROM tenant.rbac_permission_audit
		WHERE tenant_id = $1
		  AND ($2 = '' OR user_id = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		  AND (NOT $5::boolean OR access_granted = false)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7`,
		filters.TenantID, filters.UserID, nullableTime(filters.From), nullableTime(filters.To),
		filters.DeniedOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var requestContext []byte
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &rec.Resource, &rec.Action,
			&rec.PermissionCode, &rec.AccessGranted, &rec.DenialReason, &requestContext, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(requestContext) > 0 {
			_ = json.Unmarshal(requestContext, &rec.RequestContext)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// PurgeBefore deletes records older than the cutoff and reports how many
// rows were removed.
func (r *Repository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tenant.rbac_permission_audit WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
