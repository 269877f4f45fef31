package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

func pathId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.GetAllProducts(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, products)
	}
}

func searchProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.SearchProducts(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, products)
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, product)
	}
}

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("invalid request"))
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}

		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		go models.RecordAudit(userId, "CREATE", "product", product.ID, product.Name)

		respondOK(c, product)
	}
}

func updateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("invalid request"))
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}

		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		go models.RecordAudit(userId, "UPDATE", "product", product.ID, product.Name)

		respondOK(c, product)
	}
}

func deactivateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		if err := models.DeactivateProduct(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}

		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		go models.RecordAudit(userId, "DEACTIVATE", "product", id, "")

		respondOK(c, gin.H{"id": id})
	}
}

func exportProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := models.ExportProductsExcel(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}

		filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			c.Error(err)
		}
	}
}

func listSlipsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		slips, err := models.GetSlips(c.Request.Context(), limit, offset)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, slips)
	}
}

func getImportSlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		slip, err := models.GetImportSlip(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, slip)
	}
}

func getExportSlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		slip, err := models.GetExportSlip(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, slip)
	}
}

func createImportSlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewImportSlip
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("invalid request"))
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		slip, err := models.CreateImportSlip(c.Request.Context(), userId, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}

		go models.RecordAudit(userId, "CREATE", "import_slip", slip.ID, slip.SupplierName)

		respondOK(c, slip)
	}
}

func createExportSlipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewExportSlip
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("invalid request"))
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		slip, err := models.CreateExportSlip(c.Request.Context(), userId, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}

		go models.RecordAudit(userId, "CREATE", "export_slip", slip.ID, slip.ReceiverName)

		respondOK(c, slip)
	}
}
