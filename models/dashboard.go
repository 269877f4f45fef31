package models

import (
	"context"
	"time"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/shopspring/decimal"
)

// LowStockThreshold marks products that need reordering.
const LowStockThreshold = 10

type DashboardStats struct {
	TotalProducts   int64           `json:"total_products"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	LowStock        []*Product      `json:"low_stock"`
	MonthlyInbound  []int64         `json:"monthly_inbound"`
	MonthlyOutbound []int64         `json:"monthly_outbound"`
	MonthLabels     []string        `json:"month_labels"`
}

// GetDashboardStats aggregates the landing-page numbers: catalog size,
// total value of stock on hand, low-stock products and twelve months of
// inbound/outbound quantities.
func GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	products, err := GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalStockValue: decimal.Zero,
		LowStock:        []*Product{},
	}
	for _, p := range products {
		if p.IsActive != nil && !*p.IsActive {
			continue
		}
		stats.TotalProducts++
		qty := decimal.NewFromInt(int64(p.QuantityInStock))
		stats.TotalStockValue = stats.TotalStockValue.Add(qty.Mul(p.StandardPrice))
		if p.QuantityInStock <= LowStockThreshold {
			stats.LowStock = append(stats.LowStock, p)
		}
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

	inbound, err := monthlyQuantities(ctx, "import_slip_details", "import_slips", start)
	if err != nil {
		return nil, err
	}
	outbound, err := monthlyQuantities(ctx, "export_slip_details", "export_slips", start)
	if err != nil {
		return nil, err
	}

	stats.MonthlyInbound = make([]int64, 12)
	stats.MonthlyOutbound = make([]int64, 12)
	stats.MonthLabels = make([]string, 12)
	for i := 0; i < 12; i++ {
		month := start.AddDate(0, i, 0)
		label := month.Format("2006-01")
		stats.MonthLabels[i] = label
		stats.MonthlyInbound[i] = inbound[label]
		stats.MonthlyOutbound[i] = outbound[label]
	}
	return stats, nil
}

type monthlyRow struct {
	Month string
	Total int64
}

func monthlyQuantities(ctx context.Context, detailTable string, slipTable string, since time.Time) (map[string]int64, error) {
	db := config.GetDB()
	var rows []monthlyRow
	err := db.WithContext(ctx).Table(detailTable).
		Select("DATE_FORMAT("+slipTable+".created_at, '%Y-%m') AS month, SUM("+detailTable+".quantity) AS total").
		Joins("JOIN "+slipTable+" ON "+slipTable+".id = "+detailTable+".slip_id").
		Where(slipTable+".created_at >= ?", since).
		Group("month").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Month] = r.Total
	}
	return out, nil
}
