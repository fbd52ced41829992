// Package report derives dashboard and report figures from a snapshot of
// products and sales. Every function is pure: the same snapshot always gives
// the same result and nothing is cached between calls.
package report

import (
	"cmp"
	"regexp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
)

const (
	TopSellingLimit  = 5
	RecentSalesLimit = 5
	StockLevelsLimit = 10
	WeeklyDays       = 7
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// variantSuffix matches the " (500g)" style suffix dropped from chart labels.
var variantSuffix = regexp.MustCompile(` \(.+\)`)

type NamedQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type DateSales struct {
	Date  model.Date `json:"date"`
	Sales int        `json:"sales"`
}

type DateBreakdown struct {
	Date         model.Date      `json:"date"`
	Sales        int             `json:"sales"`
	ProductsSold []NamedQuantity `json:"productsSold"`
}

type DaySales struct {
	Date         model.Date      `json:"date"`
	Day          string          `json:"day"`
	Sales        int             `json:"sales"`
	ProductsSold []NamedQuantity `json:"productsSold"`
}

type WeekdaySales struct {
	Weekday int    `json:"weekday"`
	Day     string `json:"day"`
	Sales   int    `json:"sales"`
}

type StockLevel struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type InventorySplit struct {
	InStock int `json:"inStock"`
	Sold    int `json:"sold"`
}

type RecentSale struct {
	model.Sale
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

type Dashboard struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalItemsSold int             `json:"totalItemsSold"`
	TotalProducts  int             `json:"totalProducts"`
	LowStockCount  int             `json:"lowStockCount"`
	TopSelling     []NamedQuantity `json:"topSelling"`
	SalesSeries    []DateSales     `json:"salesSeries"`
	RecentSales    []RecentSale    `json:"recentSales"`
}

type Report struct {
	StockLevels    []StockLevel    `json:"stockLevels"`
	WeeklySales    []DaySales      `json:"weeklySales"`
	InventorySplit InventorySplit  `json:"inventorySplit"`
	SalesSeries    []DateBreakdown `json:"salesSeries"`
	TopSelling     []NamedQuantity `json:"topSelling"`
	SalesByWeekday [7]WeekdaySales `json:"salesByWeekday"`
}

// ComputeDashboard returns the headline figures of the dashboard page.
func ComputeDashboard(products []model.Product, sales []model.Sale) Dashboard {
	idx := indexProducts(products)

	return Dashboard{
		TotalRevenue:   totalRevenue(idx, sales),
		TotalItemsSold: TotalItemsSold(sales),
		TotalProducts:  len(products),
		LowStockCount:  LowStockCount(products),
		TopSelling:     topSelling(idx, sales, TopSellingLimit),
		SalesSeries:    SalesSeries(sales),
		RecentSales:    recentSales(idx, sales, RecentSalesLimit),
	}
}

// ComputeReport returns the figures of the reports page. The weekly chart
// covers the seven days ending at asOf.
func ComputeReport(products []model.Product, sales []model.Sale, asOf model.Date) (Report, error) {
	idx := indexProducts(products)

	weekly, err := weeklySales(idx, sales, asOf)
	if err != nil {
		return Report{}, err
	}

	return Report{
		StockLevels:    StockLevels(products, StockLevelsLimit),
		WeeklySales:    weekly,
		InventorySplit: ComputeInventorySplit(products, sales),
		SalesSeries:    salesBreakdown(idx, sales),
		TopSelling:     topSelling(idx, sales, TopSellingLimit),
		SalesByWeekday: SalesByWeekday(sales),
	}, nil
}

// TotalRevenue sums price times quantity over sales whose product still
// exists. Prices are the current ones.
func TotalRevenue(products []model.Product, sales []model.Sale) decimal.Decimal {
	return totalRevenue(indexProducts(products), sales)
}

func totalRevenue(idx productIndex, sales []model.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range sales {
		product, ok := idx[sale.ProductID]
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(sale.Quantity))))
	}
	return total
}

func TotalItemsSold(sales []model.Sale) int {
	var total int
	for _, sale := range sales {
		total += sale.Quantity
	}
	return total
}

func LowStockCount(products []model.Product) int {
	var count int
	for _, product := range products {
		if product.IsLowStock() {
			count++
		}
	}
	return count
}

// TopSelling groups sales by product name and returns the n names with the
// most units sold. Sales of deleted products are left out. Equal quantities
// keep the order in which the names first appear in sales.
func TopSelling(products []model.Product, sales []model.Sale, n int) []NamedQuantity {
	return topSelling(indexProducts(products), sales, n)
}

func topSelling(idx productIndex, sales []model.Sale, n int) []NamedQuantity {
	var grouped groupedQuantities
	for _, sale := range sales {
		product, ok := idx[sale.ProductID]
		if !ok {
			continue
		}
		grouped.add(product.Name, sale.Quantity)
	}

	top := grouped.sortedDesc()
	if len(top) > n {
		top = top[:n]
	}
	for i := range top {
		top[i].Name = chartLabel(top[i].Name)
	}
	return top
}

// SalesSeries sums units sold per sale date, oldest date first.
func SalesSeries(sales []model.Sale) []DateSales {
	totals := make(map[model.Date]int)
	for _, sale := range sales {
		totals[sale.SaleDate] += sale.Quantity
	}

	series := make([]DateSales, 0, len(totals))
	for date, total := range totals {
		series = append(series, DateSales{Date: date, Sales: total})
	}
	slices.SortFunc(series, func(a, b DateSales) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return series
}

// SalesByWeekday sums units sold per weekday of the sale date, Sunday first.
// Weekdays without sales are present with zero.
func SalesByWeekday(sales []model.Sale) [7]WeekdaySales {
	var days [7]WeekdaySales
	for i := range days {
		days[i] = WeekdaySales{Weekday: i, Day: weekdayNames[i]}
	}

	for _, sale := range sales {
		wd, err := sale.SaleDate.Weekday()
		if err != nil {
			continue
		}
		days[wd].Sales += sale.Quantity
	}
	return days
}

// StockLevels returns the n products with the most units in stock.
func StockLevels(products []model.Product, n int) []StockLevel {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b model.Product) int {
		return cmp.Compare(b.Stock, a.Stock)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	levels := make([]StockLevel, 0, len(sorted))
	for _, product := range sorted {
		levels = append(levels, StockLevel{Name: chartLabel(product.Name), Stock: product.Stock})
	}
	return levels
}

// ComputeInventorySplit compares units on the shelves with units sold over all time.
func ComputeInventorySplit(products []model.Product, sales []model.Sale) InventorySplit {
	var inStock int
	for _, product := range products {
		inStock += product.Stock
	}
	return InventorySplit{InStock: inStock, Sold: TotalItemsSold(sales)}
}

func recentSales(idx productIndex, sales []model.Sale, n int) []RecentSale {
	sorted := slices.Clone(sales)
	slices.SortStableFunc(sorted, func(a, b model.Sale) int {
		return cmp.Compare(b.SaleDate, a.SaleDate)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	recent := make([]RecentSale, 0, len(sorted))
	for _, sale := range sorted {
		rs := RecentSale{
			Sale:        sale,
			ProductName: model.UnknownProductName,
			Price:       decimal.Zero,
			Total:       decimal.Zero,
		}
		if product, ok := idx[sale.ProductID]; ok {
			rs.ProductName = product.Name
			rs.Price = product.Price
			rs.Total = product.Price.Mul(decimal.NewFromInt(int64(sale.Quantity)))
		}
		recent = append(recent, rs)
	}
	return recent
}

func weeklySales(idx productIndex, sales []model.Sale, asOf model.Date) ([]DaySales, error) {
	byDate := make(map[model.Date]*groupedQuantities, WeeklyDays)
	days := make([]DaySales, 0, WeeklyDays)
	for i := WeeklyDays - 1; i >= 0; i-- {
		date, err := asOf.AddDays(-i)
		if err != nil {
			return nil, err
		}
		wd, err := date.Weekday()
		if err != nil {
			return nil, err
		}
		days = append(days, DaySales{Date: date, Day: weekdayNames[wd]})
		byDate[date] = &groupedQuantities{}
	}

	for _, sale := range sales {
		grouped, ok := byDate[sale.SaleDate]
		if !ok {
			continue
		}
		grouped.add(idx.name(sale.ProductID), sale.Quantity)
	}

	for i := range days {
		grouped := byDate[days[i].Date]
		days[i].Sales = grouped.total()
		days[i].ProductsSold = grouped.sortedDesc()
	}
	return days, nil
}

func salesBreakdown(idx productIndex, sales []model.Sale) []DateBreakdown {
	byDate := make(map[model.Date]*groupedQuantities)
	for _, sale := range sales {
		grouped, ok := byDate[sale.SaleDate]
		if !ok {
			grouped = &groupedQuantities{}
			byDate[sale.SaleDate] = grouped
		}
		grouped.add(idx.name(sale.ProductID), sale.Quantity)
	}

	series := make([]DateBreakdown, 0, len(byDate))
	for date, grouped := range byDate {
		series = append(series, DateBreakdown{
			Date:         date,
			Sales:        grouped.total(),
			ProductsSold: grouped.items(),
		})
	}
	slices.SortFunc(series, func(a, b DateBreakdown) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return series
}

type productIndex map[model.ID]model.Product

func indexProducts(products []model.Product) productIndex {
	idx := make(productIndex, len(products))
	for _, product := range products {
		idx[product.ID] = product
	}
	return idx
}

func (idx productIndex) name(id model.ID) string {
	if product, ok := idx[id]; ok {
		return product.Name
	}
	return model.UnknownProductName
}

// groupedQuantities sums quantities per name, remembering first-seen order.
type groupedQuantities struct {
	order []NamedQuantity
	pos   map[string]int
}

func (g *groupedQuantities) add(name string, quantity int) {
	if g.pos == nil {
		g.pos = make(map[string]int)
	}
	if i, ok := g.pos[name]; ok {
		g.order[i].Quantity += quantity
		return
	}
	g.pos[name] = len(g.order)
	g.order = append(g.order, NamedQuantity{Name: name, Quantity: quantity})
}

func (g *groupedQuantities) total() int {
	var total int
	for _, item := range g.order {
		total += item.Quantity
	}
	return total
}

func (g *groupedQuantities) items() []NamedQuantity {
	return append([]NamedQuantity{}, g.order...)
}

func (g *groupedQuantities) sortedDesc() []NamedQuantity {
	items := g.items()
	slices.SortStableFunc(items, func(a, b NamedQuantity) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	return items
}

func chartLabel(name string) string {
	return variantSuffix.ReplaceAllString(name, "")
}
