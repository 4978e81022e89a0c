package location

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/service/location"
	"github.com/jwalitptl/geonotify/pkg/httputil"
)

type Handler struct {
	service location.Service
}

func NewHandler(service location.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	locations := r.Group("/locations")
	{
		locations.POST("", h.ProcessLocation)
	}
}

type processLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	City      string   `json:"city"`
	UserID    string   `json:"user_id" binding:"required,uuid"`
}

func (h *Handler) ProcessLocation(c *gin.Context) {
	var req processLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	coord := model.Coordinate{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}

	result, err := h.service.ProcessLocation(c.Request.Context(), coord, req.City, userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithAccepted(c, result)
}
