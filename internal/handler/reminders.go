package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"reminders-lite/internal/middleware"
	"reminders-lite/internal/model"
	"reminders-lite/internal/store"
)

type ReminderStore interface {
	ListReminders(ctx context.Context, userID int64) ([]model.Reminder, error)
	GetReminder(ctx context.Context, userID, id int64) (model.Reminder, bool, error)
	CreateReminder(ctx context.Context, r model.Reminder, nowMillis int64) (model.Reminder, error)
	UpdateReminder(ctx context.Context, r model.Reminder) (model.Reminder, bool, error)
	DeleteReminder(ctx context.Context, userID, id int64) (bool, error)
}

// ChangePublisher is told about every successful write.
type ChangePublisher interface {
	Publish(userID, reminderID int64, op string)
}

type ReminderHandler struct {
	Store     ReminderStore
	Publisher ChangePublisher
}

func (h *ReminderHandler) List(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	reminders, err := h.Store.ListReminders(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

func (h *ReminderHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	id, ok := reminderIDParam(c)
	if !ok {
		return
	}

	r, found, err := h.Store.GetReminder(c.Request.Context(), userID, id)
	if err != nil {
		h.internalError(c, "get", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	var body model.Reminder
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !ownedBy(c, body, userID) {
		return
	}
	body.UserID = userID

	created, err := h.Store.CreateReminder(c.Request.Context(), body, time.Now().UnixMilli())
	if errors.Is(err, store.ErrInvalidReminder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if err != nil {
		h.internalError(c, "create", err)
		return
	}

	h.publish(userID, created.ID, model.OpCreate)
	c.JSON(http.StatusCreated, created)
}

func (h *ReminderHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	id, ok := reminderIDParam(c)
	if !ok {
		return
	}

	var body model.Reminder
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if body.ID != 0 && body.ID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reminder id does not match path"})
		return
	}
	if !ownedBy(c, body, userID) {
		return
	}
	body.ID = id
	body.UserID = userID

	updated, found, err := h.Store.UpdateReminder(c.Request.Context(), body)
	if errors.Is(err, store.ErrInvalidReminder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if err != nil {
		h.internalError(c, "update", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	h.publish(userID, id, model.OpUpdate)
	c.JSON(http.StatusOK, updated)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	id, ok := reminderIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.Store.DeleteReminder(c.Request.Context(), userID, id)
	if err != nil {
		h.internalError(c, "delete", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	h.publish(userID, id, model.OpDelete)
	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) publish(userID, reminderID int64, op string) {
	if h.Publisher != nil {
		h.Publisher.Publish(userID, reminderID, op)
	}
}

func (h *ReminderHandler) internalError(c *gin.Context, op string, err error) {
	log.Printf("reminders %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

func reminderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder id"})
		return 0, false
	}
	return id, true
}

func ownedBy(c *gin.Context, r model.Reminder, userID int64) bool {
	if r.UserID != 0 && r.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Reminder belongs to another user"})
		return false
	}
	return true
}
