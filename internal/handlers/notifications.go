package handlers

import (
	"context"
	"strconv"

	"doctor-appointment-server/internal/services"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NotificationInbox is the per-user notification store.
type NotificationInbox interface {
	List(ctx context.Context, userID string, page, limit int) (*services.NotificationPage, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
	DeleteAll(ctx context.Context, userID string) error
}

type NotificationHandler struct {
	inbox NotificationInbox
	log   zerolog.Logger
}

func NewNotificationHandler(inbox NotificationInbox, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{inbox: inbox, log: log}
}

type MarkReadRequest struct {
	NotificationID string `json:"notificationId" binding:"required"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

func (h *NotificationHandler) GetAllNotifications(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	page, err := queryInt(c, "page", 0)
	if err != nil {
		utils.BadRequest(c, "page must be a number")
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		utils.BadRequest(c, "limit must be a number")
		return
	}

	result, err := h.inbox.List(c.Request.Context(), caller.ID, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Notifications fetched successfully", result)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	n, err := h.inbox.UnreadCount(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Unread count fetched successfully", UnreadCountResponse{Count: n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req MarkReadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), caller.ID, req.NotificationID); err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	if err := h.inbox.MarkAllRead(c.Request.Context(), caller.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "All notifications marked as read", nil)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	if err := h.inbox.Delete(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "Notification deleted", nil)
}

func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	if err := h.inbox.DeleteAll(c.Request.Context(), caller.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.Success(c, "All notifications deleted", nil)
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
