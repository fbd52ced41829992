package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
)

func TestReportService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should include a recorded sale in the dashboard", func(t *testing.T) {
		svc := newMemoryServices()
		rice := svc.createProduct(t, "Rice", "100", 10)
		svc.createProduct(t, "Beans", "1", 50)

		sale, err := svc.sales.RecordSale(ctx, RecordSaleParams{ProductID: rice.ID, Quantity: 4})
		require.NoError(t, err)
		assert.Equal(t, 6, svc.stockOf(t, rice.ID))

		d, err := svc.reports.DashboardMetrics(ctx)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(400).Equal(d.TotalRevenue))
		assert.Equal(t, 4, d.TotalItemsSold)
		assert.Equal(t, 2, d.TotalProducts)
		assert.Equal(t, 1, d.LowStockCount)
		require.Len(t, d.RecentSales, 1)
		assert.Equal(t, sale.ID, d.RecentSales[0].ID)
	})

	t.Run("Should end the week at asOf", func(t *testing.T) {
		svc := newMemoryServices()

		r, err := svc.reports.ReportMetrics(ctx, "2024-01-07")
		require.NoError(t, err)
		assert.Equal(t, model.Date("2024-01-07"), r.WeeklySales[6].Date)

		r, err = svc.reports.ReportMetrics(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, model.Date("2024-03-10"), r.WeeklySales[6].Date)
	})

	t.Run("Should reject a malformed asOf", func(t *testing.T) {
		svc := newMemoryServices()

		_, err := svc.reports.ReportMetrics(ctx, "yesterday")
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})
}
