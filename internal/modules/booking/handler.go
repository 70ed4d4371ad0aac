package booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"punchin/internal/domain"
	"punchin/internal/middleware"
	"punchin/internal/pkg/response"
	"punchin/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the booking routes on an authenticated group. submit wraps the
// create route, typically with a rate limiter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submit ...gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	bookings.POST("/quote", h.Quote)
	bookings.POST("", append(submit, h.Submit)...)
	bookings.GET("", h.List)
	bookings.GET("/:id", h.Get)
	bookings.POST("/:id/reschedule/validate", h.ValidateReschedule)
	bookings.POST("/:id/reschedule", h.Reschedule)
	bookings.POST("/:id/approve", h.Approve)
	bookings.POST("/:id/cancel", h.Cancel)
	bookings.POST("/:id/complete", h.Complete)

	availability := rg.Group("/availability",
		middleware.RequireRole(string(domain.RoleStudio), string(domain.RoleEngineer)))
	availability.POST("", h.CreateAvailability)
	availability.DELETE("/:id", h.DeleteAvailability)
}

func (h *Handler) Quote(c *gin.Context) {
	req, ok := h.buildRequest(c)
	if !ok {
		return
	}
	q, err := h.service.Quote(c.Request.Context(), *req)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

func (h *Handler) Submit(c *gin.Context) {
	req, ok := h.buildRequest(c)
	if !ok {
		return
	}
	b, err := h.service.Submit(c.Request.Context(), *req)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) buildRequest(c *gin.Context) (*BookingRequest, bool) {
	var body QuoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return nil, false
	}
	if fields := validator.Validate(body); fields != nil {
		response.ValidationError(c, fields)
		return nil, false
	}

	req, err := h.service.BuildRequest(c.Request.Context(), body.input(middleware.UserID(c)))
	if err != nil {
		RespondError(c, err)
		return nil, false
	}
	return req, true
}

// List returns the caller's bookings as artist or engineer, or a studio's bookings to
// its owner (role=studio&studio_id=...).
func (h *Handler) List(c *gin.Context) {
	role := domain.ParticipantRole(c.DefaultQuery("role", string(domain.ParticipantArtist)))
	if !role.Valid() {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "role must be artist, studio or engineer")
		return
	}

	participantID := middleware.UserID(c)
	if role == domain.ParticipantStudio {
		studio, err := h.service.LoadStudio(c.Request.Context(), c.Query("studio_id"))
		if err != nil {
			RespondError(c, err)
			return
		}
		if studio.OwnerID != participantID {
			RespondError(c, ErrForbidden)
			return
		}
		participantID = studio.ID
	}

	list, err := h.service.FetchBookings(c.Request.Context(), participantID, role)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) Get(c *gin.Context) {
	b, ok := h.loadVisible(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) loadVisible(c *gin.Context) (*domain.Booking, bool) {
	ctx := c.Request.Context()
	b, err := h.service.LoadBooking(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return nil, false
	}
	studio, err := h.service.LoadStudio(ctx, b.StudioID)
	if err != nil {
		RespondError(c, err)
		return nil, false
	}
	if !isParticipant(*b, *studio, middleware.UserID(c)) {
		RespondError(c, ErrForbidden)
		return nil, false
	}
	return b, true
}

func (h *Handler) ValidateReschedule(c *gin.Context) {
	var body RescheduleRequest
	if !bindReschedule(c, &body) {
		return
	}
	b, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if err := h.service.ValidateReschedule(c.Request.Context(), *b, body.Start, body.DurationMinutes); err != nil {
		RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ValidateRescheduleResponse{Valid: true})
}

func (h *Handler) Reschedule(c *gin.Context) {
	var body RescheduleRequest
	if !bindReschedule(c, &body) {
		return
	}
	b, err := h.service.Reschedule(c.Request.Context(), middleware.UserID(c), c.Param("id"), body.Start, body.DurationMinutes)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func bindReschedule(c *gin.Context, body *RescheduleRequest) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if fields := validator.Validate(body); fields != nil {
		response.ValidationError(c, fields)
		return false
	}
	return true
}

func (h *Handler) Approve(c *gin.Context) {
	h.changeStatus(c, h.service.Approve)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.service.Cancel)
}

func (h *Handler) Complete(c *gin.Context) {
	h.changeStatus(c, h.service.Complete)
}

func (h *Handler) changeStatus(c *gin.Context, change func(ctx context.Context, actorID, bookingID string) (*domain.Booking, error)) {
	b, err := change(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CreateAvailability(c *gin.Context) {
	var body AvailabilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(body); fields != nil {
		response.ValidationError(c, fields)
		return
	}
	entry, err := body.entry()
	if err != nil {
		RespondError(c, err)
		return
	}

	created, err := h.service.CreateAvailability(c.Request.Context(), middleware.UserID(c), entry)
	if err != nil {
		RespondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"entry": created})
}

func (h *Handler) DeleteAvailability(c *gin.Context) {
	if err := h.service.DeleteAvailability(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RespondError maps service errors onto the response envelope. Unknown errors are
// attached to the context for the error logger.
func RespondError(c *gin.Context, err error) {
	msg := UserMessage(err)
	switch {
	case errors.Is(err, ErrInvalidDuration):
		response.Error(c, http.StatusBadRequest, "INVALID_DURATION", msg)
	case errors.Is(err, ErrMissingRoom):
		response.Error(c, http.StatusBadRequest, "MISSING_ROOM", msg)
	case errors.Is(err, ErrMissingEngineer):
		response.Error(c, http.StatusBadRequest, "MISSING_ENGINEER", msg)
	case errors.Is(err, domain.ErrMalformedEntry):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrStudioClosed):
		response.Error(c, http.StatusConflict, "STUDIO_CLOSED", msg)
	case errors.Is(err, ErrStudioBlackout):
		response.Error(c, http.StatusConflict, "STUDIO_BLACKOUT", msg)
	case errors.Is(err, ErrRoomUnavailable):
		response.Error(c, http.StatusConflict, "ROOM_UNAVAILABLE", msg)
	case errors.Is(err, ErrEngineerUnavailable):
		response.Error(c, http.StatusConflict, "ENGINEER_UNAVAILABLE", msg)
	case errors.Is(err, ErrBookingConflict):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", msg)
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", msg)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", msg)
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", msg)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusServiceUnavailable, "REQUEST_TIMEOUT", "Request was cancelled")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", msg)
	}
}
