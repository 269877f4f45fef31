package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("employee_id and password are required"))
			return
		}
		result, err := models.Login(c.Request.Context(), &input)
		if err != nil {
			respondError(c, http.StatusUnauthorized, err)
			return
		}
		respondOK(c, result)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		tokenId, _ := utils.GetTokenIdFromContext(c.Request.Context())
		if err := models.Logout(userId, tokenId); err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		respondOK(c, gin.H{"logged_out": true})
	}
}

func currentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		user, err := models.GetUser(c.Request.Context(), userId)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, user)
	}
}

type changePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input changePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("old_password and new_password are required"))
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if err := models.ChangePassword(c.Request.Context(), userId, input.OldPassword, input.NewPassword); err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, gin.H{"changed": true})
	}
}

func updateProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// accounts signed in through an external provider manage their
		// profile there, not here
		if loginType, _ := utils.GetLoginTypeFromContext(c.Request.Context()); loginType != "password" {
			respondError(c, http.StatusForbidden, errors.New("profile is managed by your sign-in provider"))
			return
		}
		var input models.UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("invalid request"))
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		user, err := models.UpdateProfile(c.Request.Context(), userId, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, user)
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetAllUsers(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, users)
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("invalid request"))
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}

		actorId, _ := utils.GetUserIdFromContext(c.Request.Context())
		go models.RecordAudit(actorId, "CREATE", "user", user.ID, user.EmployeeId)

		respondOK(c, user)
	}
}

func listRolesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, err := models.GetAllRoles(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, roles)
	}
}

type resetPasswordInput struct {
	NewPassword string `json:"new_password" binding:"required"`
}

func resetPasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		var input resetPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, http.StatusBadRequest, errors.New("new_password is required"))
			return
		}
		if err := models.ResetPassword(c.Request.Context(), id, input.NewPassword); err != nil {
			respondModelError(c, err)
			return
		}

		actorId, _ := utils.GetUserIdFromContext(c.Request.Context())
		go models.RecordAudit(actorId, "RESET_PASSWORD", "user", id, "")

		respondOK(c, gin.H{"id": id})
	}
}

func deactivateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		actorId, _ := utils.GetUserIdFromContext(c.Request.Context())
		if id == actorId {
			respondError(c, http.StatusBadRequest, errors.New("cannot deactivate your own account"))
			return
		}
		if err := models.DeactivateUser(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}

		go models.RecordAudit(actorId, "DEACTIVATE", "user", id, "")

		respondOK(c, gin.H{"id": id})
	}
}

func activateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		if err := models.ActivateUser(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}

		actorId, _ := utils.GetUserIdFromContext(c.Request.Context())
		go models.RecordAudit(actorId, "ACTIVATE", "user", id, "")

		respondOK(c, gin.H{"id": id})
	}
}

func auditLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		logs, err := models.GetAuditLogs(c.Request.Context(), limit, offset)
		if err != nil {
			respondModelError(c, err)
			return
		}
		respondOK(c, logs)
	}
}
