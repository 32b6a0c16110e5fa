package statistics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/config"
	"github.com/toylink/donations/pkg/types"
)

const DefaultPageSize = 20

type DashboardRequest struct {
	Status   string `form:"status" json:"status"`
	Category string `form:"category" json:"category"`
	// Page is 1-based. Invalid values fall back to the first page, values past the end to the last.
	Page string `form:"page" json:"page"`
}

// Filters validates the request and turns it into column predicates.
func (r *DashboardRequest) Filters() (types.FiltersAnd, error) {
	var filters types.FiltersAnd
	if r == nil {
		return filters, nil
	}
	if r.Status != "" {
		s := types.PaymentStatus(r.Status)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", payment.ErrValidation, r.Status)
		}
		filters = append(filters, types.NewEqFilter("status", s))
	}
	if r.Category != "" {
		c := types.ParseDonationCategory(r.Category)
		if c == nil {
			return nil, fmt.Errorf("%w: unknown category %q", payment.ErrValidation, r.Category)
		}
		filters = append(filters, types.NewEqFilter("category", *c))
	}
	return filters, nil
}

// Aggregates are computed over every donation regardless of the filters.
type Aggregates struct {
	TotalApproved decimal.Decimal `json:"total_approved"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	ApprovedCount int64           `json:"approved_count"`
}

type DashboardResponse struct {
	Items      []*models.Payment `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Aggregates Aggregates        `json:"aggregates"`
	Status     string            `json:"status_filter,omitempty"`
	Category   string            `json:"category_filter,omitempty"`
}

// Dashboard lists donations for operators.
type Dashboard interface {
	GetDashboard(ctx context.Context, req *DashboardRequest) (*DashboardResponse, error)
}

type Service struct {
	db       *gorm.DB
	pageSize int
}

func New(db *gorm.DB, cfg *config.Config) *Service {
	size := DefaultPageSize
	if cfg != nil && cfg.Dashboard.PageSize > 0 {
		size = cfg.Dashboard.PageSize
	}
	return &Service{db: db, pageSize: size}
}

func (s *Service) GetDashboard(ctx context.Context, req *DashboardRequest) (*DashboardResponse, error) {
	if req == nil {
		req = &DashboardRequest{}
	}
	filters, err := req.Filters()
	if err != nil {
		return nil, err
	}

	aggs, err := s.getAggregates(ctx)
	if err != nil {
		return nil, err
	}

	where := clause.Where{Exprs: []clause.Expression{filters}}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Payment{}).Where(where).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	page := clampPage(req.Page, totalPages)

	items := make([]*models.Payment, 0, s.pageSize)
	if total > 0 {
		q := s.db.WithContext(ctx).Model(&models.Payment{}).
			Where(where).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "approved_at"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
			Offset((page - 1) * s.pageSize).
			Limit(s.pageSize)
		if err := q.Find(&items).Error; err != nil {
			return nil, err
		}
	}

	return &DashboardResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: totalPages,
		Aggregates: *aggs,
		Status:     req.Status,
		Category:   req.Category,
	}, nil
}

func (s *Service) getAggregates(ctx context.Context) (*Aggregates, error) {
	var row struct {
		TotalApproved decimal.Decimal
		TotalPending  decimal.Decimal
		ApprovedCount int64
	}
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Select(`COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS total_approved,
COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS total_pending,
COUNT(CASE WHEN status = ? THEN 1 END) AS approved_count`,
			types.PaymentStatusApproved, types.PaymentStatusPending, types.PaymentStatusApproved).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &Aggregates{
		TotalApproved: row.TotalApproved.Round(2),
		TotalPending:  row.TotalPending.Round(2),
		ApprovedCount: row.ApprovedCount,
	}, nil
}

func clampPage(raw string, totalPages int) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	return page
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(s *Service) Dashboard { return s },
	),
)
