package compare

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/internal/providers/uberauth"
	"github.com/farewise/fare-compare/pkg/common"
	"github.com/farewise/fare-compare/pkg/middleware"
)

// Handler exposes price comparison over HTTP.
type Handler struct {
	service *Service
	tokens  *uberauth.Manager
}

// NewHandler creates a comparison handler.
func NewHandler(service *Service, tokens *uberauth.Manager) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// RegisterRoutes wires the comparison endpoints into the router group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, jwtSecret string) {
	prices := api.Group("/prices")
	{
		prices.POST("/compare", middleware.OptionalAuth(jwtSecret), h.Compare)
		prices.GET("/history", middleware.Auth(jwtSecret), h.History)
		prices.GET("/history/:id", middleware.Auth(jwtSecret), h.Search)
	}

	uber := api.Group("/uber")
	{
		uber.GET("/login", h.UberLogin)
		uber.GET("/callback", h.UberCallback)
	}
}

// CompareRequest is the body of a comparison request. Both locations accept
// a free-text string, a [lat, lng] array, or a structured object.
type CompareRequest struct {
	Pickup      location.Input `json:"pickup"`
	Destination location.Input `json:"destination"`
}

// Compare handles POST /prices/compare
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var userID *uuid.UUID
	if id, err := middleware.GetUserID(c); err == nil {
		userID = &id
	}

	result, err := h.service.Compare(c.Request.Context(), req.Pickup, req.Destination, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, result)
}

// History handles GET /prices/history
func (h *Handler) History(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
		return
	}

	limit := parseQueryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := parseQueryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	records, err := h.service.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, records, &common.Meta{Limit: limit, Offset: offset})
}

// Search handles GET /prices/history/:id
func (h *Handler) Search(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid search id")
		return
	}

	record, err := h.service.Search(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// History entries are private to their owner
	userID, err := middleware.GetUserID(c)
	if err != nil || record.UserID == nil || *record.UserID != userID {
		common.ErrorResponse(c, http.StatusNotFound, "search not found")
		return
	}

	common.SuccessResponse(c, record)
}

// UberLogin handles GET /uber/login
func (h *Handler) UberLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, h.tokens.AuthorizationURL([]string{"profile", "request.estimate"}))
}

// UberCallback handles GET /uber/callback
func (h *Handler) UberCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "missing authorization code")
		return
	}

	if err := h.tokens.ExchangeAuthorizationCode(c.Request.Context(), code); err != nil {
		common.ErrorResponse(c, http.StatusBadGateway, "token exchange failed")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "uber account connected"})
}

func respondError(c *gin.Context, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
}

func parseQueryInt(c *gin.Context, key string, fallback int) int {
	value := c.Query(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
