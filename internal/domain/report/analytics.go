package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/catalog"
)

// Revenue split used for the profit figures. Cost is not tracked per product,
// so every delivered sale is split at a fixed ratio.
var (
	ProfitShare = decimal.NewFromFloat(0.3)
	CostShare   = decimal.NewFromFloat(0.7)
)

const (
	// TopProductsLimit caps the best-seller list
	TopProductsLimit = 5
	// TrailingMonths is the window of the monthly series
	TrailingMonths = 12
	monthLayout    = "2006-01"
)

// Split divides revenue into cost and profit
func Split(revenue decimal.Decimal) (cost, profit decimal.Decimal) {
	return revenue.Mul(CostShare).Round(2), revenue.Mul(ProfitShare).Round(2)
}

// ProductPerformance is one product with its delivered sales aggregates.
// Products without delivered sales have zero totals.
type ProductPerformance struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
}

// DeliveredOrder is the minimal view of a delivered order used for time series
type DeliveredOrder struct {
	OrderID   uuid.UUID
	Total     decimal.Decimal
	OrderDate time.Time
}

// StatusCount is one bucket of the order status distribution
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// TotalMetrics summarizes delivered orders
type TotalMetrics struct {
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	TotalCustomers int64           `json:"total_customers"`
}

// ProductStock is a product's stock position
type ProductStock struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Stock     int             `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
}

// ProductSales is a product's delivered sales
type ProductSales struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
}

// CategoryStock aggregates stock and sales per category
type CategoryStock struct {
	Category    string `json:"category"`
	TotalModels int64  `json:"total_models"`
	TotalStock  int64  `json:"total_stock"`
	TotalSold   int64  `json:"total_sold"`
}

// StockRow is one line of the stock management table
type StockRow struct {
	ProductID    uuid.UUID           `json:"product_id"`
	Name         string              `json:"name"`
	Category     string              `json:"category"`
	CurrentStock int                 `json:"current_stock"`
	Price        decimal.Decimal     `json:"price"`
	TotalSold    int64               `json:"total_sold"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	StockStatus  catalog.StockStatus `json:"stock_status"`
}

// MonthlyRevenue is delivered revenue for one calendar month
type MonthlyRevenue struct {
	Month       string          `json:"month"`
	OrdersCount int64           `json:"orders_count"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// ProfitRow is the profit split of one product
type ProfitRow struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

// MonthlyProfit is the profit split of one calendar month
type MonthlyProfit struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// Dashboard is the back office analytics payload
type Dashboard struct {
	ProductStock     []ProductStock   `json:"productStock"`
	SalesData        []ProductSales   `json:"salesData"`
	StockByCategory  []CategoryStock  `json:"stockByCategory"`
	StockManagement  []StockRow       `json:"stockManagement"`
	MonthlyRevenue   []MonthlyRevenue `json:"monthlyRevenue"`
	OrderStatus      []StatusCount    `json:"orderStatus"`
	TotalMetrics     TotalMetrics     `json:"totalMetrics"`
	TopProducts      []ProductSales   `json:"topProducts"`
	LowStockProducts []ProductStock   `json:"lowStockProducts"`
}

// ProfitAnalysis is the profit report payload
type ProfitAnalysis struct {
	ProfitData    []ProfitRow     `json:"profitData"`
	MonthlyProfit []MonthlyProfit `json:"monthlyProfit"`
}

// Stats is the admin landing page summary
type Stats struct {
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalServices int64           `json:"totalServices"`
}

// AnalyticsRepository runs the aggregate queries.
// Every sales figure it returns counts delivered orders only.
type AnalyticsRepository interface {
	ProductPerformance(ctx context.Context) ([]ProductPerformance, error)
	DeliveredOrdersSince(ctx context.Context, since time.Time) ([]DeliveredOrder, error)
	StatusDistribution(ctx context.Context) ([]StatusCount, error)
	DeliveredTotals(ctx context.Context) (TotalMetrics, error)
	CountOrders(ctx context.Context) (int64, error)
}

// BuildDashboard assembles the dashboard from raw aggregates
func BuildDashboard(perf []ProductPerformance, delivered []DeliveredOrder, statuses []StatusCount, totals TotalMetrics, now time.Time) Dashboard {
	return Dashboard{
		ProductStock:     productStock(perf),
		SalesData:        salesData(perf),
		StockByCategory:  stockByCategory(perf),
		StockManagement:  MergeStockRows(perf),
		MonthlyRevenue:   BucketByMonth(delivered, now),
		OrderStatus:      statuses,
		TotalMetrics:     totals,
		TopProducts:      topProducts(perf),
		LowStockProducts: lowStock(perf),
	}
}

// BuildProfitAnalysis assembles the profit report from raw aggregates
func BuildProfitAnalysis(perf []ProductPerformance, delivered []DeliveredOrder, now time.Time) ProfitAnalysis {
	rows := make([]ProfitRow, 0, len(perf))
	for _, p := range perf {
		if p.TotalSold == 0 {
			continue
		}
		cost, profit := Split(p.TotalRevenue)
		rows = append(rows, ProfitRow{
			ProductID:    p.ProductID,
			Name:         p.Name,
			Category:     p.Category,
			TotalSold:    p.TotalSold,
			TotalRevenue: p.TotalRevenue,
			TotalCost:    cost,
			TotalProfit:  profit,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalProfit.GreaterThan(rows[j].TotalProfit)
	})

	months := BucketByMonth(delivered, now)
	monthly := make([]MonthlyProfit, len(months))
	for i, m := range months {
		cost, profit := Split(m.Revenue)
		monthly[i] = MonthlyProfit{Month: m.Month, Revenue: m.Revenue, Cost: cost, Profit: profit}
	}

	return ProfitAnalysis{ProfitData: rows, MonthlyProfit: monthly}
}

// WindowStart is the beginning of the trailing revenue window ending at now
func WindowStart(now time.Time) time.Time {
	return now.AddDate(0, -TrailingMonths, 0)
}

// BucketByMonth groups delivered orders of the trailing window by calendar month,
// most recent month first. Months without orders are omitted.
func BucketByMonth(orders []DeliveredOrder, now time.Time) []MonthlyRevenue {
	since := WindowStart(now)
	buckets := make(map[string]*MonthlyRevenue)
	for _, o := range orders {
		if o.OrderDate.Before(since) {
			continue
		}
		key := o.OrderDate.UTC().Format(monthLayout)
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyRevenue{Month: key, Revenue: decimal.Zero}
			buckets[key] = b
		}
		b.OrdersCount++
		b.Revenue = b.Revenue.Add(o.Total)
	}

	out := make([]MonthlyRevenue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

// MergeStockRows builds the stock table ordered by category then name.
// Rows sharing a (name, category) pair collapse into one: the row with more
// sales wins and the stock of all duplicates is summed.
func MergeStockRows(perf []ProductPerformance) []StockRow {
	sorted := make([]ProductPerformance, len(perf))
	copy(sorted, perf)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Name < sorted[j].Name
	})

	type key struct{ name, category string }
	index := make(map[key]int)
	rows := make([]StockRow, 0, len(sorted))
	for _, p := range sorted {
		k := key{p.Name, p.Category}
		i, seen := index[k]
		if !seen {
			index[k] = len(rows)
			rows = append(rows, StockRow{
				ProductID:    p.ProductID,
				Name:         p.Name,
				Category:     p.Category,
				CurrentStock: p.Stock,
				Price:        p.Price,
				TotalSold:    p.TotalSold,
				TotalRevenue: p.TotalRevenue,
			})
			continue
		}
		merged := rows[i].CurrentStock + p.Stock
		if p.TotalSold > rows[i].TotalSold {
			rows[i] = StockRow{
				ProductID:    p.ProductID,
				Name:         p.Name,
				Category:     p.Category,
				Price:        p.Price,
				TotalSold:    p.TotalSold,
				TotalRevenue: p.TotalRevenue,
			}
		}
		rows[i].CurrentStock = merged
	}

	for i := range rows {
		rows[i].StockStatus = catalog.ClassifyStock(rows[i].CurrentStock)
	}
	return rows
}

func productStock(perf []ProductPerformance) []ProductStock {
	out := make([]ProductStock, len(perf))
	for i, p := range perf {
		out[i] = toProductStock(p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock > out[j].Stock })
	return out
}

func lowStock(perf []ProductPerformance) []ProductStock {
	out := make([]ProductStock, 0)
	for _, p := range perf {
		if p.Stock < catalog.LowStockThreshold {
			out = append(out, toProductStock(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

func salesData(perf []ProductPerformance) []ProductSales {
	out := make([]ProductSales, 0)
	for _, p := range perf {
		if p.TotalSold == 0 {
			continue
		}
		out = append(out, ProductSales{
			ProductID:    p.ProductID,
			Name:         p.Name,
			Category:     p.Category,
			TotalSold:    p.TotalSold,
			TotalRevenue: p.TotalRevenue,
			AvgPrice:     p.AvgPrice,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSold > out[j].TotalSold })
	return out
}

func topProducts(perf []ProductPerformance) []ProductSales {
	sales := salesData(perf)
	if len(sales) > TopProductsLimit {
		sales = sales[:TopProductsLimit]
	}
	return sales
}

func stockByCategory(perf []ProductPerformance) []CategoryStock {
	byCategory := make(map[string]*CategoryStock)
	order := make([]string, 0)
	for _, p := range perf {
		c, ok := byCategory[p.Category]
		if !ok {
			c = &CategoryStock{Category: p.Category}
			byCategory[p.Category] = c
			order = append(order, p.Category)
		}
		c.TotalModels++
		c.TotalStock += int64(p.Stock)
		c.TotalSold += p.TotalSold
	}

	out := make([]CategoryStock, 0, len(order))
	for _, name := range order {
		out = append(out, *byCategory[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalStock > out[j].TotalStock })
	return out
}

func toProductStock(p ProductPerformance) ProductStock {
	return ProductStock{
		ProductID: p.ProductID,
		Name:      p.Name,
		Stock:     p.Stock,
		Price:     p.Price,
		Category:  p.Category,
	}
}
