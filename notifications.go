package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

func mailboxHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

		mailbox, err := models.GetMailbox(c.Request.Context(), userId,
			c.DefaultQuery("box", models.BoxInbox), c.Query("type"), page, perPage)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, mailbox)
	}
}

func sendNotificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewNotification
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("recipient_id and title are required"))
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		notification, err := models.SendNotification(c.Request.Context(), userId, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, notification)
	}
}

func unreadCountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		count, err := models.UnreadCount(c.Request.Context(), userId)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, gin.H{"unread": count})
	}
}

func markReadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if err := models.MarkNotificationRead(c.Request.Context(), userId, id); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, gin.H{"id": id})
	}
}

func markAllReadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if err := models.MarkAllRead(c.Request.Context(), userId); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, gin.H{"marked": true})
	}
}

type pinInput struct {
	Pinned *bool `json:"pinned" binding:"required"`
}

func pinHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		var input pinInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("pinned is required"))
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if err := models.PinNotification(c.Request.Context(), userId, id, *input.Pinned); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, gin.H{"id": id, "pinned": *input.Pinned})
	}
}

func deleteNotificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if err := models.DeleteNotification(c.Request.Context(), userId, id); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, gin.H{"id": id})
	}
}
