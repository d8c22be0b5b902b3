package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise and planner service dependencies.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	plannerService  service.PlannerService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, plannerService service.PlannerService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		plannerService:  plannerService,
	}
}

// --- DTOs for API (Data Transfer Objects) ---

type ExerciseDetailsRequest struct {
	ID           string   `json:"id" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	BodyPart     string   `json:"bodyPart" binding:"omitempty"`
	Target       string   `json:"target" binding:"omitempty"`
	Equipment    string   `json:"equipment" binding:"omitempty"`
	GifURL       string   `json:"gifUrl" binding:"omitempty,url"`
	Reps         int      `json:"reps" binding:"omitempty,min=1"`
	Sets         int      `json:"sets" binding:"omitempty,min=1"`
	Instructions []string `json:"instructions" binding:"omitempty"`
}

type VideoRecommendationRequest struct {
	VideoID   string `json:"videoId" binding:"required"`
	Title     string `json:"title" binding:"omitempty"`
	Thumbnail string `json:"thumbnail" binding:"omitempty,url"`
}

// AddExerciseRequest schedules one catalog exercise on one or more days.
type AddExerciseRequest struct {
	DayIDs               []string                     `json:"dayIds" binding:"required,min=1"`
	ExerciseDetails      ExerciseDetailsRequest       `json:"exerciseDetails" binding:"required"`
	VideoRecommendations []VideoRecommendationRequest `json:"videoRecommendations" binding:"omitempty"`
}

// UpdateExerciseRequest carries a partial details patch plus video edits.
// Removals are applied before additions.
type UpdateExerciseRequest struct {
	ExerciseDetails domain.ExerciseDetailsPatch  `json:"exerciseDetails"`
	RemovedVideos   []string                     `json:"removedVideos" binding:"omitempty"`
	NewAddedVideos  []VideoRecommendationRequest `json:"newAddedVideos" binding:"omitempty"`
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MediaURLResponse struct {
	URL       string `json:"url"`
	ObjectKey string `json:"objectKey,omitempty"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID                   string                       `json:"id"`
	DayID                string                       `json:"dayId"`
	ExerciseDetails      domain.ExerciseDetails       `json:"exerciseDetails"`
	VideoRecommendations []domain.VideoRecommendation `json:"videoRecommendations"`
	HasMedia             bool                         `json:"hasMedia"`
	CreatedAt            time.Time                    `json:"createdAt"`
	UpdatedAt            time.Time                    `json:"updatedAt"`
}

// TodayResponse pairs the resolved day with its exercises.
type TodayResponse struct {
	Day       DayResponse        `json:"day"`
	Exercises []ExerciseResponse `json:"exercises"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:                   ex.ID.Hex(),
		DayID:                ex.DayID.Hex(),
		ExerciseDetails:      ex.Details,
		VideoRecommendations: ex.VideoRecommendations,
		HasMedia:             ex.MediaObjectKey != "",
		CreatedAt:            ex.CreatedAt,
		UpdatedAt:            ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(&ex)
	}
	return responses
}

func mapDetailsRequest(req ExerciseDetailsRequest) domain.ExerciseDetails {
	return domain.ExerciseDetails{
		ID:           req.ID,
		Name:         req.Name,
		BodyPart:     req.BodyPart,
		Target:       req.Target,
		Equipment:    req.Equipment,
		GifURL:       req.GifURL,
		Reps:         req.Reps,
		Sets:         req.Sets,
		Instructions: req.Instructions,
	}
}

func mapVideoRequests(reqs []VideoRecommendationRequest) []domain.VideoRecommendation {
	videos := make([]domain.VideoRecommendation, len(reqs))
	for i, req := range reqs {
		videos[i] = domain.VideoRecommendation{
			VideoID:   req.VideoID,
			Title:     req.Title,
			Thumbnail: req.Thumbnail,
		}
	}
	return videos
}

// --- Handler Methods ---

// AddExercise godoc
// @Summary Schedule an exercise on one or more days
// @Description Creates one exercise document per target day, all or nothing.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body AddExerciseRequest true "Exercise and target days"
// @Success 201 {array} ExerciseResponse "Created exercises"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "A target day does not exist or is not yours"
// @Failure 409 {object} gin.H "Exercise already on one of the days"
// @Router /exercises [post]
func (h *ExerciseHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	dayIDs := make([]primitive.ObjectID, len(req.DayIDs))
	for i, raw := range req.DayIDs {
		dayIDs[i], err = primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid day ID format: %s", raw))
			return
		}
	}

	created, err := h.exerciseService.AddExercise(
		c.Request.Context(),
		userID,
		dayIDs,
		mapDetailsRequest(req.ExerciseDetails),
		mapVideoRequests(req.VideoRecommendations),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidDaySelect):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExercisesToResponse(created))
}

// GetExercisesByDay godoc
// @Summary List a day's exercises
// @Description Returns a page of the day's exercises in creation order.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day id"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size" default(10)
// @Success 200 {array} ExerciseResponse "Exercises"
// @Failure 404 {object} gin.H "Day not found"
// @Router /days/{dayId}/exercises [get]
func (h *ExerciseHandler) GetExercisesByDay(c *gin.Context) {
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

	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	exercises, err := h.exerciseService.GetExercisesByDay(c.Request.Context(), userID, dayID, offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrDayNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// UpdateExercise godoc
// @Summary Update an exercise
// @Description Merges a partial details patch and edits the video list (removals first, then additions).
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day id"
// @Param exerciseId path string true "Exercise id"
// @Param update body UpdateExerciseRequest true "Patch and video edits"
// @Success 200 {object} ExerciseResponse "Updated exercise"
// @Failure 404 {object} gin.H "Day or exercise not found"
// @Router /days/{dayId}/exercises/{exerciseId} [patch]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req UpdateExerciseRequest
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
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(
		c.Request.Context(),
		userID,
		dayID,
		exerciseID,
		req.ExerciseDetails,
		req.RemovedVideos,
		mapVideoRequests(req.NewAddedVideos),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDayNotFound), errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Delete an exercise from a day
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day id"
// @Param exerciseId path string true "Exercise id"
// @Success 200 {object} gin.H "Exercise deleted"
// @Failure 404 {object} gin.H "Day or exercise not found"
// @Router /days/{dayId}/exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
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
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	err = h.exerciseService.DeleteExercise(c.Request.Context(), userID, dayID, exerciseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDayNotFound), errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "exercise deleted"})
}

// GetTodayExercises godoc
// @Summary Get today's exercises
// @Description Resolves which day is "today" from the planner start date and returns its exercises.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TodayResponse "Today's day and exercises"
// @Failure 404 {object} gin.H "Planner not started or no days configured"
// @Router /exercises/today [get]
func (h *ExerciseHandler) GetTodayExercises(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	day, exercises, err := h.plannerService.TodayExercises(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrNoDaysConfigured),
			errors.Is(err, service.ErrPlannerNotStarted):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to resolve today's exercises.")
		}
		return
	}

	c.JSON(http.StatusOK, TodayResponse{
		Day:       MapDayToResponse(day),
		Exercises: MapExercisesToResponse(exercises),
	})
}

// RequestMediaUpload godoc
// @Summary Get a presigned upload URL for a demo clip
// @Description The client PUTs the file directly to object storage using the returned URL.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day id"
// @Param exerciseId path string true "Exercise id"
// @Param upload body MediaUploadRequest true "Content type of the file"
// @Success 200 {object} MediaURLResponse "Presigned upload URL"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /days/{dayId}/exercises/{exerciseId}/media [post]
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	var req MediaUploadRequest
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
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	url, objectKey, err := h.exerciseService.MediaUploadURL(c.Request.Context(), userID, dayID, exerciseID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL.")
		}
		return
	}

	c.JSON(http.StatusOK, MediaURLResponse{URL: url, ObjectKey: objectKey})
}

// GetMediaDownload godoc
// @Summary Get a presigned download URL for a demo clip
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day id"
// @Param exerciseId path string true "Exercise id"
// @Success 200 {object} MediaURLResponse "Presigned download URL"
// @Failure 404 {object} gin.H "Exercise not found or no media attached"
// @Router /days/{dayId}/exercises/{exerciseId}/media [get]
func (h *ExerciseHandler) GetMediaDownload(c *gin.Context) {
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
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	url, err := h.exerciseService.MediaDownloadURL(c.Request.Context(), userID, dayID, exerciseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound), errors.Is(err, service.ErrNoMediaAttached):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create download URL.")
		}
		return
	}

	c.JSON(http.StatusOK, MediaURLResponse{URL: url})
}
