// Package seed fills an empty store with a demo catalog and a month of sales.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/internal/service"
)

const (
	// Days is how many days of sales are generated, ending today.
	Days = 30

	maxSalesPerDay  = 5
	maxSaleQuantity = 3
)

// Catalog is the demo product list.
var Catalog = []service.CreateProductParams{
	{Name: "CICS Uniform (Male)", Category: "Department Uniform", Price: decimal.NewFromInt(850), Stock: 45, ImageURL: "https://picsum.photos/seed/cicsmale/200"},
	{Name: "CICS Uniform (Female)", Category: "Department Uniform", Price: decimal.NewFromInt(900), Stock: 32, ImageURL: "https://picsum.photos/seed/cicsfemale/200"},
	{Name: "CBA Uniform (Male)", Category: "Department Uniform", Price: decimal.NewFromInt(850), Stock: 50, ImageURL: "https://picsum.photos/seed/cbamale/200"},
	{Name: "CBA Uniform (Female)", Category: "Department Uniform", Price: decimal.NewFromInt(900), Stock: 60, ImageURL: "https://picsum.photos/seed/cbafemale/200"},
	{Name: "CAS Uniform (Unisex)", Category: "Department Uniform", Price: decimal.NewFromInt(800), Stock: 75, ImageURL: "https://picsum.photos/seed/cas/200"},
	{Name: "PE T-Shirt", Category: "PE Uniform", Price: decimal.NewFromInt(350), Stock: 150, ImageURL: "https://picsum.photos/seed/petshirt/200"},
	{Name: "PE Jogging Pants", Category: "PE Uniform", Price: decimal.NewFromInt(450), Stock: 120, ImageURL: "https://picsum.photos/seed/pepants/200"},
	{Name: "School Patch (Large)", Category: "Patches", Price: decimal.NewFromInt(50), Stock: 300, ImageURL: "https://picsum.photos/seed/patchlarge/200"},
	{Name: "School Patch (Small)", Category: "Patches", Price: decimal.NewFromInt(35), Stock: 5, ImageURL: "https://picsum.photos/seed/patchsmall/200"},
	{Name: "Collar Bias (per meter)", Category: "Materials", Price: decimal.NewFromInt(25), Stock: 500, ImageURL: "https://picsum.photos/seed/bias/200"},
}

// Seeder writes the demo data through the services, so seeded sales take
// stock and emit events like any other sale.
type Seeder struct {
	store    repository.Store
	products service.ProductService
	sales    service.SaleService
	logger   *slog.Logger
	rand     *rand.Rand
}

func New(
	store repository.Store,
	products service.ProductService,
	sales service.SaleService,
	logger *slog.Logger,
	seed uint64,
) *Seeder {
	return &Seeder{
		store:    store,
		products: products,
		sales:    sales,
		logger:   logger.With(slog.String("service", "seed")),
		rand:     rand.New(rand.NewPCG(seed, seed)),
	}
}

// Run seeds the store unless it already holds products. Sales are dated over
// the Days days ending on today. It reports whether anything was written.
func (s *Seeder) Run(ctx context.Context, today time.Time) (bool, error) {
	existing, err := s.store.Products().ListAllProducts(ctx)
	if err != nil {
		return false, fmt.Errorf("product repository list all products: %w", err)
	}
	if len(existing) > 0 {
		s.logger.DebugContext(ctx, "store already has products, skipping seed", slog.Int("products", len(existing)))
		return false, nil
	}

	products := make([]model.Product, 0, len(Catalog))
	for _, params := range Catalog {
		p, err := s.products.CreateProduct(ctx, params)
		if err != nil {
			return false, fmt.Errorf("product service create product %q: %w", params.Name, err)
		}
		products = append(products, p)
	}

	recorded, skipped := 0, 0
	for day := Days - 1; day >= 0; day-- {
		date := model.DateOf(today.AddDate(0, 0, -day))

		for range s.rand.IntN(maxSalesPerDay) + 1 {
			p := products[s.rand.IntN(len(products))]

			_, err := s.sales.RecordSale(ctx, service.RecordSaleParams{
				ProductID: p.ID,
				Quantity:  s.rand.IntN(maxSaleQuantity) + 1,
				SaleDate:  date,
			})
			if errors.Is(err, apperr.InsufficientStockErr) {
				skipped++
				continue
			}
			if err != nil {
				return false, fmt.Errorf("sale service record sale: %w", err)
			}
			recorded++
		}
	}

	s.logger.InfoContext(ctx, "store seeded",
		slog.Int("products", len(products)),
		slog.Int("sales", recorded),
		slog.Int("skipped_sales", skipped))

	return true, nil
}
