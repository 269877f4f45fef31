package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

// All API responses share one envelope: {"success": bool, "data": ..., "error": ...}.
// Clients key off success, never off the HTTP status alone.

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// respondModelError maps a model error to a status code.
func respondModelError(c *gin.Context, err error) {
	if err == utils.ErrorRecordNotFound {
		respondError(c, http.StatusNotFound, err)
		return
	}
	respondError(c, http.StatusBadRequest, err)
}
