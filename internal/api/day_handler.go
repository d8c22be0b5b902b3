package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayHandler holds the planner service dependency.
type DayHandler struct {
	plannerService service.PlannerService
}

// NewDayHandler creates a new DayHandler.
func NewDayHandler(plannerService service.PlannerService) *DayHandler {
	return &DayHandler{plannerService: plannerService}
}

// --- DTOs ---

type AddDayRequest struct {
	DayName string `json:"dayName" binding:"required"`
}

type RenameDayRequest struct {
	DayName string `json:"dayName" binding:"required"`
}

// DayResponse is the DTO for returning a plan day.
type DayResponse struct {
	ID        string    `json:"id"`
	DayName   string    `json:"dayName"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapDayToResponse converts a domain.Day to a DayResponse DTO.
func MapDayToResponse(day *domain.Day) DayResponse {
	if day == nil {
		return DayResponse{}
	}
	return DayResponse{
		ID:        day.ID.Hex(),
		DayName:   day.DayName,
		Position:  day.Position,
		CreatedAt: day.CreatedAt,
	}
}

// MapDaysToResponse converts a slice of domain.Day to DayResponse DTOs.
func MapDaysToResponse(days []domain.Day) []DayResponse {
	responses := make([]DayResponse, len(days))
	for i, day := range days {
		responses[i] = MapDayToResponse(&day)
	}
	return responses
}

// --- Handler Methods ---

// AddDay godoc
// @Summary Add a day to the plan
// @Description Appends a named day to the end of the caller's rotation.
// @Tags Days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day body AddDayRequest true "Day name"
// @Success 201 {object} DayResponse "Day created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Day name already used"
// @Router /days [post]
func (h *DayHandler) AddDay(c *gin.Context) {
	var req AddDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	day, err := h.plannerService.AddDay(c.Request.Context(), userID, req.DayName)
	if err != nil {
		if errors.Is(err, service.ErrDayAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add day.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapDayToResponse(day))
}

// GetDays godoc
// @Summary List the plan's days
// @Description Returns the caller's days in rotation order.
// @Tags Days
// @Produce json
// @Security BearerAuth
// @Success 200 {array} DayResponse "Days in rotation order"
// @Failure 404 {object} gin.H "No days configured"
// @Router /days [get]
func (h *DayHandler) GetDays(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	days, err := h.plannerService.GetDays(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve days.")
		return
	}
	if len(days) == 0 {
		abortWithError(c, http.StatusNotFound, "No days found, add a day first.")
		return
	}

	c.JSON(http.StatusOK, MapDaysToResponse(days))
}

// RenameDay godoc
// @Summary Rename a day
// @Description Changes a day's name in place; its rotation position is kept.
// @Tags Days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day id"
// @Param day body RenameDayRequest true "New day name"
// @Success 200 {object} DayResponse "Day renamed"
// @Failure 404 {object} gin.H "Day not found"
// @Failure 409 {object} gin.H "Day name already used"
// @Router /days/{dayId} [patch]
func (h *DayHandler) RenameDay(c *gin.Context) {
	var req RenameDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	dayID, err := primitive.ObjectIDFromHex(c.Param("dayId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day ID format.")
		return
	}

	day, err := h.plannerService.RenameDay(c.Request.Context(), userID, dayID, req.DayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDayNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDayAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to rename day.")
		}
		return
	}

	c.JSON(http.StatusOK, MapDayToResponse(day))
}

// DeleteDay godoc
// @Summary Delete a day
// @Description Removes a day and all its exercises in one transaction.
// @Tags Days
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day id"
// @Success 200 {object} DayResponse "The deleted day"
// @Failure 404 {object} gin.H "Day not found"
// @Failure 500 {object} gin.H "Deletion aborted, nothing changed"
// @Router /days/{dayId} [delete]
func (h *DayHandler) DeleteDay(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	dayID, err := primitive.ObjectIDFromHex(c.Param("dayId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day ID format.")
		return
	}

	day, err := h.plannerService.DeleteDay(c.Request.Context(), userID, dayID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDayNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTransactionFailed):
			abortWithError(c, http.StatusInternalServerError, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete day.")
		}
		return
	}

	c.JSON(http.StatusOK, MapDayToResponse(day))
}
