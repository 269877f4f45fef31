package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type Product struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Name            string          `gorm:"size:200;not null;unique;index" json:"name" binding:"required"`
	Sku             *string         `gorm:"size:50;unique" json:"sku"`
	Description     string          `gorm:"type:text" json:"description"`
	QuantityInStock int             `gorm:"not null;default:0" json:"quantity_in_stock"`
	StandardPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"standard_price"`
	IsActive        *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name          string          `json:"name" binding:"required"`
	Sku           string          `json:"sku"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity_in_stock"`
	StandardPrice decimal.Decimal `json:"standard_price"`
}

/*
caches:
	ProductList
	Product:$id
*/

// clearProductCaches drops the list snapshot and the per-product entries a
// mutation touched. Failures are logged, never returned: the rows are
// already committed and a retry would double-apply the change.
func clearProductCaches(productIds ...int) {
	logger := config.GetLogger()
	if err := utils.RemoveRedisList[Product](); err != nil {
		config.LogError(logger, "models", "clearProductCaches", "clear product list", nil, err)
	}
	for _, id := range productIds {
		if err := utils.RemoveRedisItem[Product](id); err != nil {
			config.LogError(logger, "models", "clearProductCaches", "clear product", id, err)
		}
	}
}

// GetAllProducts returns the catalog snapshot ordered by name.
// Serves from redis when warm; every product/slip mutation clears the key.
func GetAllProducts(ctx context.Context) ([]*Product, error) {
	cached, err := utils.RetrieveRedisList[Product]()
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var results []*Product
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := utils.StoreRedisList[Product](&results); err != nil {
		return nil, err
	}
	return results, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	cached, err := utils.RetrieveRedis[Product](id)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var result Product
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := utils.StoreRedis[Product](&result, result.ID); err != nil {
		return nil, err
	}
	return &result, nil
}

func (input *NewProduct) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Product](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku, id); err != nil {
			return err
		}
	}
	if input.Quantity < 0 {
		return errors.New("quantity in stock cannot be negative")
	}
	if input.StandardPrice.IsNegative() {
		return errors.New("standard price cannot be negative")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	product := Product{
		Name:            strings.TrimSpace(input.Name),
		Sku:             utils.NilIfEmpty(strings.TrimSpace(input.Sku)),
		Description:     input.Description,
		QuantityInStock: input.Quantity,
		StandardPrice:   input.StandardPrice,
		IsActive:        utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	clearProductCaches(product.ID)
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	db := config.GetDB()
	var product Product
	if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Sku = utils.NilIfEmpty(strings.TrimSpace(input.Sku))
	product.Description = input.Description
	product.StandardPrice = input.StandardPrice
	if err := db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}

	clearProductCaches(product.ID)
	return &product, nil
}

func DeactivateProduct(ctx context.Context, id int) error {
	db := config.GetDB()
	var product Product
	if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if err := db.WithContext(ctx).Model(&product).Update("is_active", false).Error; err != nil {
		return err
	}
	clearProductCaches(product.ID)
	return nil
}

// SearchProducts is the accent-insensitive substring lookup behind the
// product combobox. Filtering happens in memory on the cached snapshot;
// the catalog is small enough that this beats a LIKE query per keystroke.
func SearchProducts(ctx context.Context, query string) ([]*Product, error) {
	products, err := GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	normalized := utils.NormalizeSearch(query)
	if normalized == "" {
		return products, nil
	}

	var results []*Product
	for _, p := range products {
		if len(results) >= config.SearchLimit {
			break
		}
		if strings.Contains(utils.NormalizeSearch(p.Name), normalized) {
			results = append(results, p)
			continue
		}
		if p.Sku != nil && strings.Contains(utils.NormalizeSearch(*p.Sku), normalized) {
			results = append(results, p)
		}
	}
	return results, nil
}

// ExportProductsExcel writes the full catalog to an xlsx workbook.
func ExportProductsExcel(ctx context.Context) (*excelize.File, error) {
	products, err := GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "SKU", "Quantity In Stock", "Standard Price", "Active"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range products {
		sku := ""
		if p.Sku != nil {
			sku = *p.Sku
		}
		values := []interface{}{p.ID, p.Name, sku, p.QuantityInStock, p.StandardPrice.String(), *p.IsActive}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return nil, err
	}
	return f, nil
}

func stockLabel(qty int) string {
	if qty == 0 {
		return "Out of Stock"
	}
	return fmt.Sprintf("Low Stock (%d left)", qty)
}
