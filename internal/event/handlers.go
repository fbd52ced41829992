package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.String("category", ev.Category),
		slog.String("price", ev.Price.StringFixed(2)),
		slog.Int("stock", ev.Stock),
	)

	s.alertLowStock(ctx, ev.ProductID, ev.Name, ev.Stock)
	return nil
}

func (s *Service) handleSaleRecordedEvent(ctx context.Context, ev SaleRecordedEvent) error {
	s.logger.InfoContext(ctx, "sale recorded",
		slog.String("sale_id", ev.SaleID),
		slog.String("product_id", ev.ProductID),
		slog.Int("quantity", ev.Quantity),
		slog.String("sale_date", ev.SaleDate),
	)

	s.alertLowStock(ctx, ev.ProductID, ev.ProductName, ev.RemainingStock)
	return nil
}

func (s *Service) alertLowStock(ctx context.Context, productID, name string, stock int) {
	if stock >= s.cfg.LowStockAlertThreshold {
		return
	}

	s.logger.WarnContext(ctx, "product stock is running low",
		slog.String("product_id", productID),
		slog.String("name", name),
		slog.Int("remaining_stock", stock),
		slog.Int("threshold", s.cfg.LowStockAlertThreshold),
	)
}
