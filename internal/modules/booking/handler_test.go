package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"punchin/internal/domain"
	"punchin/internal/middleware"
	"punchin/internal/pkg/jwt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type handlerFixture struct {
	*fixture
	router *gin.Engine
	tokens *jwt.Service
}

func newHandlerFixture() *handlerFixture {
	gin.SetMode(gin.TestMode)
	f := newFixture()
	tokens := jwt.New("test-secret", time.Hour)

	router := gin.New()
	api := router.Group("/api/v1", middleware.JWTAuth(tokens))
	NewHandler(f.svc).RegisterRoutes(api)

	return &handlerFixture{fixture: f, router: router, tokens: tokens}
}

func (h *handlerFixture) do(t *testing.T, method, path, userID, role string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	token, err := h.tokens.GenerateToken(userID, role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (h *handlerFixture) stubRequestRefs() {
	studio := nyStudio()
	h.studios.On("LoadStudio", mock.Anything, "studio-1").Return(&studio, nil)
	h.studios.On("FetchRooms", mock.Anything, "studio-1").Return([]domain.Room{roomA()}, nil)
	h.profiles.On("FetchUserProfiles", mock.Anything, []string{"eng-1"}).Return([]domain.UserProfile{instantEngineer()}, nil)
}

func quoteBody(roomID string, minutes int) QuoteRequest {
	return QuoteRequest{
		StudioID:        "studio-1",
		RoomID:          roomID,
		EngineerID:      "eng-1",
		Start:           mondayAt(14, 0),
		DurationMinutes: minutes,
	}
}

func TestHandler_Quote(t *testing.T) {
	h := newHandlerFixture()
	h.stubRequestRefs()
	h.stubSlot(slotState{})

	w, env := h.do(t, http.MethodPost, "/api/v1/bookings/quote", "artist-1", "artist", quoteBody("room-a", 60))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var q BookingQuote
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.True(t, q.IsInstant)
	assert.Equal(t, 50.0, q.Pricing.Total)
}

func TestHandler_Quote_ValidationErrors(t *testing.T) {
	h := newHandlerFixture()

	w, env := h.do(t, http.MethodPost, "/api/v1/bookings/quote", "artist-1", "artist", quoteBody("", 60))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_ROOM", env.Error.Code)
	assert.Equal(t, UserMessage(ErrMissingRoom), env.Error.Message)

	w, env = h.do(t, http.MethodPost, "/api/v1/bookings/quote", "artist-1", "artist", map[string]any{"room_id": "room-a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_Quote_DurationOutOfRange(t *testing.T) {
	h := newHandlerFixture()
	h.stubRequestRefs()

	w, env := h.do(t, http.MethodPost, "/api/v1/bookings/quote", "artist-1", "artist", quoteBody("room-a", 721))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DURATION", env.Error.Code)
}

func TestHandler_Submit(t *testing.T) {
	h := newHandlerFixture()
	h.stubRequestRefs()
	h.stubSlot(slotState{})
	h.bookings.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.ArtistID == "artist-1"
	})).Return(nil)

	w, env := h.do(t, http.MethodPost, "/api/v1/bookings", "artist-1", "artist", quoteBody("room-a", 60))

	require.Equal(t, http.StatusCreated, w.Code)
	var data struct {
		Booking domain.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, domain.BookingConfirmed, data.Booking.Status)
	h.bookings.AssertExpectations(t)
}

func TestHandler_Submit_Conflict(t *testing.T) {
	h := newHandlerFixture()
	h.stubRequestRefs()
	h.stubSlot(slotState{
		studioBookings: []domain.Booking{confirmedBooking("bk-1", "room-a", "eng-2", mondayAt(14, 0), 60)},
	})

	w, env := h.do(t, http.MethodPost, "/api/v1/bookings", "artist-1", "artist", quoteBody("room-a", 60))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ROOM_UNAVAILABLE", env.Error.Code)
	h.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestHandler_Get_OnlyParticipants(t *testing.T) {
	h := newHandlerFixture()
	b := confirmedBooking("bk-1", "room-a", "eng-1", mondayAt(14, 0), 60)
	studio := nyStudio()
	h.bookings.On("LoadBooking", mock.Anything, "bk-1").Return(&b, nil)
	h.bookings.On("LoadBooking", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	h.studios.On("LoadStudio", mock.Anything, "studio-1").Return(&studio, nil)

	w, _ := h.do(t, http.MethodGet, "/api/v1/bookings/bk-1", "owner-1", "studio_owner", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := h.do(t, http.MethodGet, "/api/v1/bookings/bk-1", "stranger", "artist", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, env = h.do(t, http.MethodGet, "/api/v1/bookings/missing", "owner-1", "studio_owner", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHandler_List(t *testing.T) {
	h := newHandlerFixture()
	studio := nyStudio()
	h.studios.On("LoadStudio", mock.Anything, "studio-1").Return(&studio, nil)
	h.bookings.On("FetchBookings", mock.Anything, "artist-1", domain.ParticipantArtist).Return([]domain.Booking{{ID: "bk-1"}}, nil)
	h.bookings.On("FetchBookings", mock.Anything, "studio-1", domain.ParticipantStudio).Return([]domain.Booking{{ID: "bk-2"}}, nil)

	w, _ := h.do(t, http.MethodGet, "/api/v1/bookings", "artist-1", "artist", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bk-1")

	w, _ = h.do(t, http.MethodGet, "/api/v1/bookings?role=studio&studio_id=studio-1", "owner-1", "studio_owner", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bk-2")

	w, _ = h.do(t, http.MethodGet, "/api/v1/bookings?role=studio&studio_id=studio-1", "artist-1", "artist", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/v1/bookings?role=drummer", "artist-1", "artist", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Cancel_InvalidTransition(t *testing.T) {
	h := newHandlerFixture()
	b := confirmedBooking("bk-1", "room-a", "eng-1", mondayAt(14, 0), 60)
	b.Status = domain.BookingCompleted
	studio := nyStudio()
	h.bookings.On("LoadBooking", mock.Anything, "bk-1").Return(&b, nil)
	h.studios.On("LoadStudio", mock.Anything, "studio-1").Return(&studio, nil)

	w, env := h.do(t, http.MethodPost, "/api/v1/bookings/bk-1/cancel", "owner-1", "studio_owner", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Error.Code)
}

func TestHandler_ValidateReschedule(t *testing.T) {
	h := newHandlerFixture()
	b := confirmedBooking("bk-1", "room-a", "eng-1", mondayAt(14, 0), 60)
	studio := nyStudio()
	h.bookings.On("LoadBooking", mock.Anything, "bk-1").Return(&b, nil)
	h.studios.On("LoadStudio", mock.Anything, "studio-1").Return(&studio, nil)
	h.stubSlot(slotState{studioBookings: []domain.Booking{b}, engineerBookings: []domain.Booking{b}})

	body := RescheduleRequest{Start: mondayAt(14, 30), DurationMinutes: 60}
	w, env := h.do(t, http.MethodPost, "/api/v1/bookings/bk-1/reschedule/validate", "artist-9", "artist", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, string(env.Data))

	body.Start = time.Date(2024, 7, 4, 12, 0, 0, 0, newYork)
	w, env = h.do(t, http.MethodPost, "/api/v1/bookings/bk-1/reschedule/validate", "artist-9", "artist", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STUDIO_BLACKOUT", env.Error.Code)
}

func TestHandler_Availability(t *testing.T) {
	h := newHandlerFixture()
	h.availability.On("CreateAvailability", mock.Anything, mock.Anything).Return(nil)

	body := AvailabilityRequest{
		Kind:     domain.AvailabilityBlock,
		Scope:    domain.ScopeEngineer,
		OwnerID:  "eng-1",
		Absolute: &domain.AbsoluteWindow{Start: mondayAt(9, 0), End: mondayAt(10, 0)},
	}

	w, _ := h.do(t, http.MethodPost, "/api/v1/availability", "artist-1", "artist", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := h.do(t, http.MethodPost, "/api/v1/availability", "eng-1", "engineer", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var data struct {
		Entry domain.AvailabilityEntry `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "eng-1", data.Entry.EngineerID)

	body.Recurring = &domain.RecurringWindow{Weekday: 1, StartMinutes: 60, DurationMinutes: 30}
	w, env = h.do(t, http.MethodPost, "/api/v1/availability", "eng-1", "engineer", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_ValidateReschedule_RejectsTerminalAndBadDuration(t *testing.T) {
	h := newHandlerFixture()
	completed := confirmedBooking("bk-1", "room-a", "eng-1", mondayAt(14, 0), 60)
	completed.Status = domain.BookingCompleted
	live := confirmedBooking("bk-2", "room-a", "eng-1", mondayAt(14, 0), 60)
	studio := nyStudio()
	h.bookings.On("LoadBooking", mock.Anything, "bk-1").Return(&completed, nil)
	h.bookings.On("LoadBooking", mock.Anything, "bk-2").Return(&live, nil)
	h.studios.On("LoadStudio", mock.Anything, "studio-1").Return(&studio, nil)

	body := RescheduleRequest{Start: mondayAt(16, 0), DurationMinutes: 60}
	w, env := h.do(t, http.MethodPost, "/api/v1/bookings/bk-1/reschedule/validate", "artist-9", "artist", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Error.Code)

	body.DurationMinutes = -30
	w, env = h.do(t, http.MethodPost, "/api/v1/bookings/bk-2/reschedule/validate", "artist-9", "artist", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DURATION", env.Error.Code)
}

func TestHandler_Quote_NegativeDuration(t *testing.T) {
	h := newHandlerFixture()
	h.stubRequestRefs()

	w, env := h.do(t, http.MethodPost, "/api/v1/bookings/quote", "artist-1", "artist", quoteBody("room-a", -15))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DURATION", env.Error.Code)
}
