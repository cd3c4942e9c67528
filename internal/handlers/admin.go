package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/middleware"
)

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit := 20
	page := 1

	if perPage := c.Query("per_page"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 1 {
			page = v
		}
	}

	users, total, err := h.auth.ListUsers(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    items,
		"total":    total,
		"page":     page,
		"per_page": limit,
	})
}

type userStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h HandlerSet) AdminSetUserStatus(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	var req userStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := c.Param("id")
	if err := h.auth.SetUserStatus(c.Request.Context(), admin.ID, userID, *req.IsActive); err != nil {
		middleware.Abort(c, err)
		return
	}

	h.log.Info().
		Str("admin_id", admin.ID).
		Str("user_id", userID).
		Bool("is_active", *req.IsActive).
		Msg("user status changed")
	c.JSON(http.StatusOK, gin.H{"id": userID, "is_active": *req.IsActive})
}
