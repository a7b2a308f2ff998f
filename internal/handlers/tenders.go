package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aschalew-star/tenderalert/internal/services"
	"github.com/aschalew-star/tenderalert/pkg/response"
)

// TenderHandler exposes HTTP endpoints for tender listings.
type TenderHandler struct {
	tenders *services.TenderService
	matcher *services.MatcherService
}

// NewTenderHandler constructs a TenderHandler.
func NewTenderHandler(tenders *services.TenderService, matcher *services.MatcherService) (*TenderHandler, error) {
	if tenders == nil {
		return nil, errors.New("tender handler: tender service is required")
	}
	if matcher == nil {
		return nil, errors.New("tender handler: matcher service is required")
	}
	return &TenderHandler{tenders: tenders, matcher: matcher}, nil
}

// POST /api/v1/tenders  (admin only)
//
// Notification fan-out runs after the response is written; publishing never
// waits on matching or delivery.
func (h *TenderHandler) Create(c *gin.Context) {
	var req services.CreateTenderInput
	if !bindAndValidate(c, &req) {
		return
	}

	tender, err := h.tenders.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	go h.matcher.QueueNotificationsForNewTender(context.Background(), tender.ID)

	response.Success(c, http.StatusCreated, tender)
}

// GET /api/v1/tenders
func (h *TenderHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 25)

	rows, total, err := h.tenders.List(c.Request.Context(), services.ListTendersInput{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, rows, &response.Meta{
		Page:    page,
		PerPage: perPage,
		Total:   total,
	})
}
