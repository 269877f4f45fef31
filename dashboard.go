package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
)

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := models.GetDashboardStats(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, stats)
	}
}

type assistantInput struct {
	Question string `json:"question" binding:"required"`
}

func assistantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input assistantInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("question is required"))
			return
		}
		answer, err := models.AskAssistant(c.Request.Context(), input.Question)
		if err != nil {
			if err == models.ErrorAssistantDisabled {
				respondError(c, http.StatusServiceUnavailable, err)
				return
			}
			respondError(c, http.StatusBadRequest, err)
			return
		}
		respondOK(c, answer)
	}
}
