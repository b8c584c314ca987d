package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"spotted-backend/internal/config"
	"spotted-backend/internal/models"
	"spotted-backend/internal/moderation"
	"spotted-backend/internal/repository"
	"spotted-backend/internal/triage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SpottedHandler interface {
	ProcessNew(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Delete(c *gin.Context)
	List(c *gin.Context)
}

type spottedHandler struct {
	triageSvc     *triage.Service
	moderationSvc *moderation.Service
	store         repository.SpottedStore
	cfg           *config.Config
	logger        *zap.Logger
}

func NewSpottedHandler(triageSvc *triage.Service, moderationSvc *moderation.Service, store repository.SpottedStore, cfg *config.Config, logger *zap.Logger) SpottedHandler {
	return &spottedHandler{
		triageSvc:     triageSvc,
		moderationSvc: moderationSvc,
		store:         store,
		cfg:           cfg,
		logger:        logger,
	}
}

// parseFlag parses a boolean that clients send either as a JSON bool or as
// one of the four literal strings "true"/"True"/"false"/"False". Anything
// else is a validation error.
func parseFlag(field string, value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true", "True":
			return true, nil
		case "false", "False":
			return false, nil
		}
	}
	return false, fmt.Errorf("field %s must be a boolean", field)
}

type newSpottedRequest struct {
	Message       string      `json:"message"`
	IsSafe        interface{} `json:"is_safe"`
	HasAttachment interface{} `json:"has_attachment"`
}

// ProcessNew handles POST /api/spotteds. The spotted is classified and
// routed to approved, rejected or the moderation queue.
func (h *spottedHandler) ProcessNew(c *gin.Context) {
	var req newSpottedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field message is required"})
		return
	}
	if req.IsSafe == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field is_safe is required"})
		return
	}

	isSafe, err := parseFlag("is_safe", req.IsSafe)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hasAttachment := false
	if req.HasAttachment != nil {
		hasAttachment, err = parseFlag("has_attachment", req.HasAttachment)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	username := c.GetString("username")
	result, err := h.triageSvc.Process(c.Request.Context(), triage.Input{
		Message:       req.Message,
		IsSafe:        isSafe,
		HasAttachment: hasAttachment,
		Origin:        username,
		DryRun:        username == h.cfg.Auth.DryRunUser,
	})
	if err != nil {
		if errors.Is(err, triage.ErrClassifierUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Classification is currently unavailable, try again later"})
			return
		}
		h.logger.Error("Failed to process new spotted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process spotted"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// The moderation requests carry no binding tag on api_id: a missing or
// zero id is simply an id that exists in no state, which the store reports
// as not-found rather than a validation failure.
type approveRequest struct {
	APIID int64 `json:"api_id"`
}

// Approve handles POST /api/spotteds/approve.
func (h *spottedHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newID, err := h.moderationSvc.Approve(req.APIID, c.GetString("username"))
	if err != nil {
		h.respondModerationError(c, req.APIID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_id": newID})
}

type rejectRequest struct {
	APIID  int64  `json:"api_id"`
	Reason string `json:"reason"`
}

// Reject handles POST /api/spotteds/reject.
func (h *spottedHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newID, err := h.moderationSvc.Reject(req.APIID, req.Reason, c.GetString("username"))
	if err != nil {
		h.respondModerationError(c, req.APIID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_id": newID})
}

type deleteRequest struct {
	APIID  int64  `json:"api_id"`
	Reason string `json:"reason"`
	By     string `json:"by" binding:"required"`
}

// Delete handles POST /api/spotteds/delete, taking down an approved
// spotted.
func (h *spottedHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newID, err := h.moderationSvc.SoftDelete(req.APIID, req.Reason, req.By, c.GetString("username"))
	if err != nil {
		h.respondModerationError(c, req.APIID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_id": newID})
}

func (h *spottedHandler) respondModerationError(c *gin.Context, id int64, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	case errors.Is(err, moderation.ErrEmptyReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": "field reason is required"})
	default:
		h.logger.Error("Moderation action failed", zap.Int64("api_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Moderation action failed"})
	}
}

// List handles GET /api/spotteds/:state, the admin listing view.
// Query parameters:
// - search: substring match on message and suggestion (optional)
// - by_api: filter on the by_api flag (optional)
// - ordering: sort field, prefix with '-' for descending (optional)
func (h *spottedHandler) List(c *gin.Context) {
	state := models.State(c.Param("state"))
	if !models.ValidState(state) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return
	}

	filter := repository.ListFilter{Search: c.Query("search")}

	if byAPIStr := c.Query("by_api"); byAPIStr != "" {
		byAPI, err := parseFlag("by_api", byAPIStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.ByAPI = &byAPI
	}

	if ordering := c.Query("ordering"); ordering != "" {
		filter.Desc = strings.HasPrefix(ordering, "-")
		filter.OrderBy = strings.TrimPrefix(ordering, "-")
	}

	spotteds, err := h.store.List(state, filter)
	if err != nil {
		h.logger.Error("Failed to list spotteds", zap.String("state", string(state)), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to list spotteds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(spotteds), "results": spotteds})
}
