package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SlipTypeImport = "IMPORT"
	SlipTypeExport = "EXPORT"

	// one lock guards all stock movements; slips are rare enough that
	// serializing them is simpler than per-product locks
	stockLockKey = "lock:stock"
)

var ErrorInsufficientStock = errors.New("insufficient stock")

type ImportSlip struct {
	ID           int                `gorm:"primary_key" json:"id"`
	SupplierName string             `gorm:"size:200;not null" json:"supplier_name"`
	InvoiceTotal decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"invoice_total"`
	Note         string             `gorm:"type:text" json:"note"`
	CreatedBy    int                `gorm:"not null" json:"created_by"`
	Creator      *User              `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Details      []ImportSlipDetail `gorm:"foreignKey:SlipId" json:"details"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

type ImportSlipDetail struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SlipId    int             `gorm:"not null;index" json:"slip_id"`
	ProductId int             `gorm:"not null" json:"product_id"`
	ItemName  string          `gorm:"size:200;not null" json:"item_name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

type ExportSlip struct {
	ID           int                `gorm:"primary_key" json:"id"`
	ReceiverName string             `gorm:"size:200;not null" json:"receiver_name"`
	Note         string             `gorm:"type:text" json:"note"`
	CreatedBy    int                `gorm:"not null" json:"created_by"`
	Creator      *User              `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Details      []ExportSlipDetail `gorm:"foreignKey:SlipId" json:"details"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

type ExportSlipDetail struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SlipId    int             `gorm:"not null;index" json:"slip_id"`
	ProductId int             `gorm:"not null" json:"product_id"`
	ItemName  string          `gorm:"size:200;not null" json:"item_name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

type NewSlipItem struct {
	ItemName  string          `json:"itemName" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
}

type NewImportSlip struct {
	SupplierName string          `json:"supplier_name" binding:"required"`
	InvoiceTotal decimal.Decimal `json:"invoice_total"`
	Note         string          `json:"note"`
	Items        []NewSlipItem   `json:"items" binding:"required"`
}

// NewExportItem references an existing product; prices come from the catalog.
type NewExportItem struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required"`
}

type NewExportSlip struct {
	ReceiverName string          `json:"receiver_name" binding:"required"`
	Note         string          `json:"note"`
	Items        []NewExportItem `json:"items" binding:"required"`
}

// SlipSummary is the flattened row the history list shows; imports and
// exports share one feed ordered by creation time.
type SlipSummary struct {
	ID          int             `json:"id"`
	SlipType    string          `json:"slip_type"`
	PartnerName string          `json:"partner_name"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

func validateSlipItems(items []NewSlipItem) error {
	if len(items) == 0 {
		return errors.New("slip must contain at least one item")
	}
	for i, item := range items {
		if strings.TrimSpace(item.ItemName) == "" {
			return fmt.Errorf("item %d: name is required", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("item %d: unit price cannot be negative", i+1)
		}
	}
	return nil
}

// withStockLock serializes stock movements across instances.
// Falls through when redis is down rather than refusing slips.
func withStockLock(ctx context.Context, fn func() error) error {
	locker := config.GetRedisLock()
	if locker == nil {
		return fn()
	}

	lock, err := locker.Obtain(ctx, stockLockKey, 10*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	})
	if err != nil {
		if err == redislock.ErrNotObtained {
			return errors.New("inventory is busy, please retry")
		}
		return fn()
	}
	defer lock.Release(ctx)

	return fn()
}

// CreateImportSlip posts an inbound slip. Unknown item names create a new
// product on the fly; known names add to its stock. All rows commit or none.
func CreateImportSlip(ctx context.Context, userId int, input *NewImportSlip) (*ImportSlip, error) {
	if err := validateSlipItems(input.Items); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var slip ImportSlip

	err := withStockLock(ctx, func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			slip = ImportSlip{
				SupplierName: strings.TrimSpace(input.SupplierName),
				InvoiceTotal: input.InvoiceTotal,
				Note:         input.Note,
				CreatedBy:    userId,
			}
			if err := tx.Create(&slip).Error; err != nil {
				return err
			}

			for _, item := range input.Items {
				name := strings.TrimSpace(item.ItemName)

				var product Product
				err := tx.Where("name = ?", name).First(&product).Error
				if err == gorm.ErrRecordNotFound {
					product = Product{
						Name:          name,
						StandardPrice: item.UnitPrice,
						IsActive:      utils.NewTrue(),
					}
					if err := tx.Create(&product).Error; err != nil {
						return err
					}
				} else if err != nil {
					return err
				}

				if err := tx.Model(&Product{}).Where("id = ?", product.ID).
					Update("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", item.Quantity)).Error; err != nil {
					return err
				}

				detail := ImportSlipDetail{
					SlipId:    slip.ID,
					ProductId: product.ID,
					ItemName:  name,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
					Amount:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
				}
				if err := tx.Create(&detail).Error; err != nil {
					return err
				}
				slip.Details = append(slip.Details, detail)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(slip.Details))
	for _, d := range slip.Details {
		ids = append(ids, d.ProductId)
	}
	clearProductCaches(ids...)

	go notifySlipPosted(SlipTypeImport, slip.ID, userId, len(slip.Details))

	return &slip, nil
}

func validateExportItems(items []NewExportItem) error {
	if len(items) == 0 {
		return errors.New("slip must contain at least one item")
	}
	seen := map[int]bool{}
	for i, item := range items {
		if item.ProductId <= 0 {
			return fmt.Errorf("item %d: product_id is required", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i+1)
		}
		if seen[item.ProductId] {
			return fmt.Errorf("item %d: duplicate product", i+1)
		}
		seen[item.ProductId] = true
	}
	return nil
}

// CreateExportSlip posts an outbound slip. Every row is checked against
// current stock inside the transaction; one short row aborts the whole slip.
func CreateExportSlip(ctx context.Context, userId int, input *NewExportSlip) (*ExportSlip, error) {
	if err := validateExportItems(input.Items); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var slip ExportSlip

	err := withStockLock(ctx, func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			slip = ExportSlip{
				ReceiverName: strings.TrimSpace(input.ReceiverName),
				Note:         input.Note,
				CreatedBy:    userId,
			}
			if err := tx.Create(&slip).Error; err != nil {
				return err
			}

			for _, item := range input.Items {
				var product Product
				if err := tx.First(&product, item.ProductId).Error; err != nil {
					if err == gorm.ErrRecordNotFound {
						return fmt.Errorf("product %d does not exist in the warehouse", item.ProductId)
					}
					return err
				}

				if product.QuantityInStock < item.Quantity {
					return fmt.Errorf("%w: %q has %d in stock, requested %d",
						ErrorInsufficientStock, product.Name, product.QuantityInStock, item.Quantity)
				}

				if err := tx.Model(&Product{}).Where("id = ?", product.ID).
					Update("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", item.Quantity)).Error; err != nil {
					return err
				}

				detail := ExportSlipDetail{
					SlipId:    slip.ID,
					ProductId: product.ID,
					ItemName:  product.Name,
					Quantity:  item.Quantity,
					UnitPrice: product.StandardPrice,
					Amount:    product.StandardPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
				}
				if err := tx.Create(&detail).Error; err != nil {
					return err
				}
				slip.Details = append(slip.Details, detail)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(slip.Details))
	for _, d := range slip.Details {
		ids = append(ids, d.ProductId)
	}
	clearProductCaches(ids...)

	go notifySlipPosted(SlipTypeExport, slip.ID, userId, len(slip.Details))
	go notifyLowStock(slip.Details)

	return &slip, nil
}

func GetSlips(ctx context.Context, limit int, offset int) ([]*SlipSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	db := config.GetDB()

	var imports []ImportSlip
	if err := db.WithContext(ctx).Preload("Details").Preload("Creator").
		Order("created_at DESC").Limit(limit + offset).Find(&imports).Error; err != nil {
		return nil, err
	}
	var exports []ExportSlip
	if err := db.WithContext(ctx).Preload("Details").Preload("Creator").
		Order("created_at DESC").Limit(limit + offset).Find(&exports).Error; err != nil {
		return nil, err
	}

	summaries := make([]*SlipSummary, 0, len(imports)+len(exports))
	for i := range imports {
		s := &imports[i]
		summary := &SlipSummary{
			ID:          s.ID,
			SlipType:    SlipTypeImport,
			PartnerName: s.SupplierName,
			Total:       s.InvoiceTotal,
			ItemCount:   len(s.Details),
			CreatedAt:   s.CreatedAt,
		}
		if s.Creator != nil {
			summary.CreatedBy = s.Creator.FullName
		}
		summaries = append(summaries, summary)
	}
	for i := range exports {
		s := &exports[i]
		total := decimal.Zero
		for _, d := range s.Details {
			total = total.Add(d.Amount)
		}
		summary := &SlipSummary{
			ID:          s.ID,
			SlipType:    SlipTypeExport,
			PartnerName: s.ReceiverName,
			Total:       total,
			ItemCount:   len(s.Details),
			CreatedAt:   s.CreatedAt,
		}
		if s.Creator != nil {
			summary.CreatedBy = s.Creator.FullName
		}
		summaries = append(summaries, summary)
	}

	// merge the two feeds newest-first
	for i := 0; i < len(summaries); i++ {
		for j := i + 1; j < len(summaries); j++ {
			if summaries[j].CreatedAt.After(summaries[i].CreatedAt) {
				summaries[i], summaries[j] = summaries[j], summaries[i]
			}
		}
	}

	if offset >= len(summaries) {
		return []*SlipSummary{}, nil
	}
	end := offset + limit
	if end > len(summaries) {
		end = len(summaries)
	}
	return summaries[offset:end], nil
}

func GetImportSlip(ctx context.Context, id int) (*ImportSlip, error) {
	db := config.GetDB()
	var slip ImportSlip
	if err := db.WithContext(ctx).Preload("Details").Preload("Creator").First(&slip, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &slip, nil
}

func GetExportSlip(ctx context.Context, id int) (*ExportSlip, error) {
	db := config.GetDB()
	var slip ExportSlip
	if err := db.WithContext(ctx).Preload("Details").Preload("Creator").First(&slip, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &slip, nil
}

// notifySlipPosted fans a system message out to the managers' inboxes.
// Runs off the request path; failures only get logged.
func notifySlipPosted(slipType string, slipId int, userId int, itemCount int) {
	ctx := context.Background()
	actor := "someone"
	if user, err := GetUser(ctx, userId); err == nil {
		actor = user.FullName
	}

	verb := "imported"
	linkTo := fmt.Sprintf("/slips/import/%d", slipId)
	if slipType == SlipTypeExport {
		verb = "exported"
		linkTo = fmt.Sprintf("/slips/export/%d", slipId)
	}
	title := fmt.Sprintf("Slip #%d posted", slipId)
	body := fmt.Sprintf("%s %s %d item(s) on slip #%d.", actor, verb, itemCount, slipId)

	if err := NotifyManagers(ctx, title, body, linkTo); err != nil {
		config.LogError(config.GetLogger(), "models", "notifySlipPosted", "notify managers", slipId, err)
	}
}

// notifyLowStock warns managers about products an export drained below the
// reorder threshold.
func notifyLowStock(details []ExportSlipDetail) {
	ctx := context.Background()
	for _, d := range details {
		product, err := GetProduct(ctx, d.ProductId)
		if err != nil || product.QuantityInStock > LowStockThreshold {
			continue
		}
		title := "Low stock warning"
		body := fmt.Sprintf("%s: %s", product.Name, stockLabel(product.QuantityInStock))
		if err := NotifyManagers(ctx, title, body, fmt.Sprintf("/products/%d", product.ID)); err != nil {
			config.LogError(config.GetLogger(), "models", "notifyLowStock", "notify managers", product.ID, err)
		}
	}
}
