package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/report"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/validator"
)

type reportParams struct {
	AsOf model.Date `validate:"omitempty,isodate"`
}

// ReportService computes the dashboard and report figures from the current
// products and sales.
type ReportService interface {
	DashboardMetrics(ctx context.Context) (report.Dashboard, error)
	// ReportMetrics uses asOf as the last day of the weekly chart, today when empty.
	ReportMetrics(ctx context.Context, asOf model.Date) (report.Report, error)
}

type reportService struct {
	store     repository.Store
	validator validator.Validator
	now       func() time.Time
}

func NewReportService(store repository.Store) ReportService {
	return &reportService{
		store:     store,
		validator: validator.MustNewDefaultValidator(),
		now:       time.Now,
	}
}

func (s *reportService) DashboardMetrics(ctx context.Context) (report.Dashboard, error) {
	products, sales, err := s.snapshot(ctx)
	if err != nil {
		return report.Dashboard{}, err
	}

	return report.ComputeDashboard(products, sales), nil
}

func (s *reportService) ReportMetrics(ctx context.Context, asOf model.Date) (report.Report, error) {
	if err := s.validator.Validate(reportParams{AsOf: asOf}); err != nil {
		return report.Report{}, apperr.ValidationErr.WrapParent(err)
	}
	if asOf == "" {
		asOf = model.DateOf(s.now())
	}

	products, sales, err := s.snapshot(ctx)
	if err != nil {
		return report.Report{}, err
	}

	r, err := report.ComputeReport(products, sales, asOf)
	if err != nil {
		return report.Report{}, apperr.ValidationErr.WrapParent(err)
	}

	return r, nil
}

func (s *reportService) snapshot(ctx context.Context) ([]model.Product, []model.Sale, error) {
	var (
		products []model.Product
		sales    []model.Sale
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.store.Products().ListAllProducts(gCtx)
		if err != nil {
			return fmt.Errorf("product repository list all products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sales, err = s.store.Sales().ListAllSales(gCtx)
		if err != nil {
			return fmt.Errorf("sale repository list all sales: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, apperr.StorageErr.WrapParent(err)
	}

	return products, sales, nil
}
