package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aschalew-star/tenderalert/internal/middleware"
	"github.com/aschalew-star/tenderalert/internal/services"
	appErrors "github.com/aschalew-star/tenderalert/pkg/errors"
	"github.com/aschalew-star/tenderalert/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for a recipient's notifications.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) (*NotificationHandler, error) {
	if service == nil {
		return nil, errors.New("notification handler: service is required")
	}
	return &NotificationHandler{service: service}, nil
}

// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	recipient, ok := middleware.RecipientFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit := parseIntQuery(c, "limit", 25)
	offset := parseIntQuery(c, "offset", 0)

	items, err := h.service.ListForRecipient(c.Request.Context(), recipient, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	recipient, ok := middleware.RecipientFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	notification, err := h.service.MarkRead(c.Request.Context(), recipient, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, notification)
}
