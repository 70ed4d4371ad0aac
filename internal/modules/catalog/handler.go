package catalog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"punchin/internal/domain"
	"punchin/internal/modules/booking"
	"punchin/internal/pkg/response"
)

// Browser is the read side of the booking service used by the catalog.
type Browser interface {
	FetchStudios(ctx context.Context) ([]domain.Studio, error)
	LoadStudio(ctx context.Context, id string) (*domain.Studio, error)
	LoadContext(ctx context.Context, studio domain.Studio, preferredEngineerID string) (*booking.BookingContext, error)
	FreeWindows(ctx context.Context, studioID, roomID string, day time.Time) ([]booking.Interval, error)
}

type Handler struct {
	browser Browser
}

func NewHandler(browser Browser) *Handler {
	return &Handler{browser: browser}
}

// RegisterRoutes mounts the public studio routes. list wraps GET /studios, typically
// with a response cache.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, list ...gin.HandlerFunc) {
	studios := rg.Group("/studios")
	studios.GET("", append(list, h.GetStudios)...)
	studios.GET("/:id", h.GetStudio)
	studios.GET("/:id/context", h.GetContext)
	studios.GET("/:id/rooms/:roomId/free", h.GetFreeWindows)
}

// GetStudios handles GET /studios?city=&page=&limit=
func (h *Handler) GetStudios(c *gin.Context) {
	all, err := h.browser.FetchStudios(c.Request.Context())
	if err != nil {
		booking.RespondError(c, err)
		return
	}

	city := strings.TrimSpace(c.Query("city"))
	filtered := make([]domain.Studio, 0, len(all))
	for _, s := range all {
		if city == "" || strings.EqualFold(s.City, city) {
			filtered = append(filtered, s)
		}
	}

	limit := 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	page := 1
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}

	from := (page - 1) * limit
	if from > len(filtered) {
		from = len(filtered)
	}
	to := from + limit
	if to > len(filtered) {
		to = len(filtered)
	}

	response.Success(c, http.StatusOK, StudioListResponse{
		Studios:    filtered[from:to],
		Total:      len(filtered),
		Page:       page,
		TotalPages: (len(filtered) + limit - 1) / limit,
	})
}

func (h *Handler) GetStudio(c *gin.Context) {
	s, err := h.browser.LoadStudio(c.Request.Context(), c.Param("id"))
	if err != nil {
		booking.RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"studio": s})
}

// GetContext handles GET /studios/:id/context?engineer_id=
func (h *Handler) GetContext(c *gin.Context) {
	ctx := c.Request.Context()
	s, err := h.browser.LoadStudio(ctx, c.Param("id"))
	if err != nil {
		booking.RespondError(c, err)
		return
	}
	bc, err := h.browser.LoadContext(ctx, *s, c.Query("engineer_id"))
	if err != nil {
		booking.RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bc)
}

// GetFreeWindows handles GET /studios/:id/rooms/:roomId/free?date=YYYY-MM-DD
func (h *Handler) GetFreeWindows(c *gin.Context) {
	dateStr := c.Query("date")
	day, err := time.Parse(domain.DateLayout, dateStr)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
		return
	}

	ctx := c.Request.Context()
	studioID, roomID := c.Param("id"), c.Param("roomId")
	windows, err := h.browser.FreeWindows(ctx, studioID, roomID, day)
	if err != nil {
		booking.RespondError(c, err)
		return
	}
	s, err := h.browser.LoadStudio(ctx, studioID)
	if err != nil {
		booking.RespondError(c, err)
		return
	}

	out := make([]FreeWindow, 0, len(windows))
	for _, w := range windows {
		out = append(out, FreeWindow{Start: w.Start, End: w.End})
	}
	response.Success(c, http.StatusOK, FreeWindowsResponse{
		StudioID: studioID,
		RoomID:   roomID,
		Date:     dateStr,
		TimeZone: s.OperatingSchedule.Location().String(),
		Windows:  out,
	})
}
