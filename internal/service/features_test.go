package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/report"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/memory"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/zerror"
)

var errLedgerDown = errors.New("ledger unavailable")

type saleFeatureContext struct {
	store    *faultyStore
	svc      services
	products map[string]model.ID
	err      error
	results  []error
}

func (c *saleFeatureContext) reset() {
	c.store = &faultyStore{Store: memory.New()}
	c.svc = newServices(c.store)
	c.products = map[string]model.ID{}
	c.err = nil
	c.results = nil
}

func (c *saleFeatureContext) aProductPricedWithUnitsInStock(name string, price, stock int) error {
	product, err := c.svc.products.CreateProduct(context.Background(), CreateProductParams{
		Name:     name,
		Category: "Groceries",
		Price:    decimal.NewFromInt(int64(price)),
		Stock:    stock,
	})
	if err != nil {
		return err
	}
	c.products[name] = product.ID
	return nil
}

func (c *saleFeatureContext) theLedgerRejectsWrites() error {
	c.store.appendErr = errLedgerDown
	return nil
}

func (c *saleFeatureContext) iSellUnitsOf(quantity int, name string) error {
	_, c.err = c.svc.sales.RecordSale(context.Background(), RecordSaleParams{ProductID: c.products[name], Quantity: quantity})
	return nil
}

func (c *saleFeatureContext) iSellUnitsOfProduct(quantity int, id string) error {
	_, c.err = c.svc.sales.RecordSale(context.Background(), RecordSaleParams{ProductID: model.ID(id), Quantity: quantity})
	return nil
}

func (c *saleFeatureContext) iDelete(name string) error {
	return c.svc.products.DeleteProduct(context.Background(), c.products[name])
}

func (c *saleFeatureContext) twoSalesOfUnitsOfRunAtTheSameTime(quantity int, name string) error {
	var wg sync.WaitGroup
	c.results = make([]error, 2)
	for i := range c.results {
		wg.Go(func() {
			_, c.results[i] = c.svc.sales.RecordSale(context.Background(), RecordSaleParams{ProductID: c.products[name], Quantity: quantity})
		})
	}
	wg.Wait()
	return nil
}

func (c *saleFeatureContext) theSaleSucceeds() error {
	return c.err
}

func (c *saleFeatureContext) theSaleFailsWith(code string) error {
	var zErr zerror.ZError
	if !errors.As(c.err, &zErr) {
		return fmt.Errorf("expected error %s, got %v", code, c.err)
	}
	if zErr.Code() != code {
		return fmt.Errorf("expected error %s, got %s", code, zErr.Code())
	}
	return nil
}

func (c *saleFeatureContext) hasUnitsInStock(name string, stock int) error {
	product, err := c.svc.store.Products().GetProduct(context.Background(), c.products[name])
	if err != nil {
		return err
	}
	if product.Stock != stock {
		return fmt.Errorf("expected %d units of %s, got %d", stock, name, product.Stock)
	}
	return nil
}

func (c *saleFeatureContext) theLedgerHoldsSaleOfUnitsOf(count, quantity int, name string) error {
	d, err := c.svc.reports.DashboardMetrics(context.Background())
	if err != nil {
		return err
	}
	if len(d.RecentSales) != count {
		return fmt.Errorf("expected %d sales, got %d", count, len(d.RecentSales))
	}
	for _, sale := range d.RecentSales {
		if sale.Quantity != quantity || sale.ProductName != name {
			return fmt.Errorf("unexpected sale of %d units of %s", sale.Quantity, sale.ProductName)
		}
	}
	return nil
}

func (c *saleFeatureContext) theLedgerIsEmpty() error {
	sales, err := c.svc.sales.ListSales(context.Background())
	if err != nil {
		return err
	}
	if len(sales) != 0 {
		return fmt.Errorf("expected an empty ledger, got %d sales", len(sales))
	}
	return nil
}

func (c *saleFeatureContext) theDashboardRevenueIs(revenue int) error {
	var (
		d   report.Dashboard
		err error
	)
	if d, err = c.svc.reports.DashboardMetrics(context.Background()); err != nil {
		return err
	}
	if !d.TotalRevenue.Equal(decimal.NewFromInt(int64(revenue))) {
		return fmt.Errorf("expected revenue %d, got %s", revenue, d.TotalRevenue)
	}
	return nil
}

func (c *saleFeatureContext) exactlyOfThemSucceeds(n int) error {
	var succeeded int
	for _, err := range c.results {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != n {
		return fmt.Errorf("expected %d successful sales, got %d", n, succeeded)
	}
	return nil
}

func initializeSaleScenario(ctx *godog.ScenarioContext) {
	tc := &saleFeatureContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" priced (\d+) with (\d+) units in stock$`, tc.aProductPricedWithUnitsInStock)
	ctx.Step(`^the ledger rejects writes$`, tc.theLedgerRejectsWrites)

	// When steps
	ctx.Step(`^I sell (\d+) units? of "([^"]*)"$`, tc.iSellUnitsOf)
	ctx.Step(`^I sell (\d+) units? of product "([^"]*)"$`, tc.iSellUnitsOfProduct)
	ctx.Step(`^I delete "([^"]*)"$`, tc.iDelete)
	ctx.Step(`^two sales of (\d+) units of "([^"]*)" run at the same time$`, tc.twoSalesOfUnitsOfRunAtTheSameTime)

	// Then steps
	ctx.Step(`^the sale succeeds$`, tc.theSaleSucceeds)
	ctx.Step(`^the sale fails with "([^"]*)"$`, tc.theSaleFailsWith)
	ctx.Step(`^"([^"]*)" has (\d+) units in stock$`, tc.hasUnitsInStock)
	ctx.Step(`^the ledger holds (\d+) sales? of (\d+) units of "([^"]*)"$`, tc.theLedgerHoldsSaleOfUnitsOf)
	ctx.Step(`^the ledger is empty$`, tc.theLedgerIsEmpty)
	ctx.Step(`^the dashboard revenue is (\d+)$`, tc.theDashboardRevenueIs)
	ctx.Step(`^exactly (\d+) of them succeeds?$`, tc.exactlyOfThemSucceeds)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeSaleScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
