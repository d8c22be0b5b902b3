package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/fitness-planner/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- Request Structs ---

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

type SetPlannerDateRequest struct {
	PlannerStartDate time.Time `json:"plannerStartDate" binding:"required"`
}

// --- Handler Methods ---

// GetProfile returns the authenticated caller's own record.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Changes name and/or email. Omitted fields keep their value.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} UserResponse "Profile updated"
// @Failure 400 {object} gin.H "Nothing to update / invalid email"
// @Failure 409 {object} gin.H "Email already taken"
// @Router /me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNothingToUpdate):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailTaken):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// SetPlannerDate godoc
// @Summary Set the planner start date
// @Description Anchors the day rotation at the given instant.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date body SetPlannerDateRequest true "Planner start date"
// @Success 200 {object} UserResponse "Planner date set"
// @Failure 400 {object} gin.H "Invalid input"
// @Router /me/planner-date [post]
func (h *UserHandler) SetPlannerDate(c *gin.Context) {
	var req SetPlannerDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.SetPlannerStartDate(c.Request.Context(), userID, req.PlannerStartDate)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to set planner date.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// DeleteAccount godoc
// @Summary Delete the caller's account
// @Description Removes the user and all their days and exercises in one transaction.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "Account deleted"
// @Failure 404 {object} gin.H "User not found"
// @Failure 500 {object} gin.H "Deletion aborted, nothing changed"
// @Router /me [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	err = h.userService.DeleteAccount(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTransactionFailed):
			abortWithError(c, http.StatusInternalServerError, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete account.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
