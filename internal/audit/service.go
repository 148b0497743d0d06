package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RepositoryPort defines the persistence methods the service needs.
type RepositoryPort interface {
	InsertDecision(ctx context.Context, entry Entry) error
	TrailWindow(ctx context.Context, filters TrailFilters, limit, offset int) ([]Record, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Enqueuer hands an entry to the background queue instead of writing it
// inline. Optional.
type Enqueuer interface {
	EnqueueAuditRecord(ctx context.Context, entry Entry) error
}

// Service coordinates the append-only audit trail.
type Service struct {
	repo     RepositoryPort
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewService builds an audit service. The enqueuer may be nil, in which
// case every record is written inline.
func NewService(repo RepositoryPort, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger}
}

// Record appends a permission decision. Best effort: a failed write is
// logged and never propagated, so audit outages cannot block the guarded
// request.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if s == nil || s.repo == nil {
		return
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueAuditRecord(ctx, entry); err == nil {
			return
		} else if s.logger != nil {
			s.logger.Warn("audit enqueue failed, writing inline", slog.Any("error", err))
		}
	}
	if err := s.repo.InsertDecision(ctx, entry); err != nil && s.logger != nil {
		s.logger.Error("audit write failed",
			slog.String("permission", entry.PermissionCode),
			slog.Any("error", err))
	}
}

// Write persists an entry and reports the error. Used by the background
// worker, where a failure should trigger a retry.
func (s *Service) Write(ctx context.Context, entry Entry) error {
	if s.repo == nil {
		return fmt.Errorf("audit: repository not configured")
	}
	return s.repo.InsertDecision(ctx, entry)
}

// Trail returns one page of the tenant's audit trail.
func (s *Service) Trail(ctx context.Context, filters TrailFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.TrailWindow(ctx, filters, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []Record{}
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Purge removes records older than the retention window.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if s.repo == nil {
		return 0, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.PurgeBefore(ctx, time.Now().Add(-retention))
}
