package catalog

import (
	"context"
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
	"punchin/internal/modules/booking"
)

type MockBrowser struct {
	mock.Mock
}

func (m *MockBrowser) FetchStudios(ctx context.Context) ([]domain.Studio, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Studio), args.Error(1)
}

func (m *MockBrowser) LoadStudio(ctx context.Context, id string) (*domain.Studio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Studio), args.Error(1)
}

func (m *MockBrowser) LoadContext(ctx context.Context, studio domain.Studio, preferredEngineerID string) (*booking.BookingContext, error) {
	args := m.Called(ctx, studio, preferredEngineerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingContext), args.Error(1)
}

func (m *MockBrowser) FreeWindows(ctx context.Context, studioID, roomID string, day time.Time) ([]booking.Interval, error) {
	args := m.Called(ctx, studioID, roomID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.Interval), args.Error(1)
}

func setup() (*gin.Engine, *MockBrowser) {
	gin.SetMode(gin.TestMode)
	m := new(MockBrowser)
	r := gin.New()
	NewHandler(m).RegisterRoutes(r.Group("/api/v1"))
	return r, m
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetStudios_FiltersAndPaginates(t *testing.T) {
	r, m := setup()
	m.On("FetchStudios", mock.Anything).Return([]domain.Studio{
		{ID: "s1", City: "Brooklyn"},
		{ID: "s2", City: "Queens"},
		{ID: "s3", City: "brooklyn"},
		{ID: "s4", City: "Brooklyn"},
	}, nil)

	w := get(r, "/api/v1/studios?city=Brooklyn&limit=2&page=2")

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data StudioListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 3, env.Data.Total)
	assert.Equal(t, 2, env.Data.TotalPages)
	require.Len(t, env.Data.Studios, 1)
	assert.Equal(t, "s4", env.Data.Studios[0].ID)
}

func TestGetStudio_NotFound(t *testing.T) {
	r, m := setup()
	m.On("LoadStudio", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	w := get(r, "/api/v1/studios/nope")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGetContext_PassesPreferredEngineer(t *testing.T) {
	r, m := setup()
	studio := domain.Studio{ID: "s1"}
	m.On("LoadStudio", mock.Anything, "s1").Return(&studio, nil)
	m.On("LoadContext", mock.Anything, studio, "eng-7").Return(&booking.BookingContext{
		Studio:    studio,
		Engineers: []domain.UserProfile{{ID: "eng-7"}},
	}, nil)

	w := get(r, "/api/v1/studios/s1/context?engineer_id=eng-7")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "eng-7")
	m.AssertExpectations(t)
}

func TestGetFreeWindows(t *testing.T) {
	r, m := setup()
	studio := domain.Studio{ID: "s1", OperatingSchedule: domain.OperatingSchedule{TimeZone: "UTC"}}
	day := time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	m.On("LoadStudio", mock.Anything, "s1").Return(&studio, nil)
	m.On("FreeWindows", mock.Anything, "s1", "r1", day).Return([]booking.Interval{
		{Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)},
	}, nil)

	w := get(r, "/api/v1/studios/s1/rooms/r1/free?date=2024-07-08")

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data FreeWindowsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "UTC", env.Data.TimeZone)
	require.Len(t, env.Data.Windows, 1)
	assert.True(t, env.Data.Windows[0].Start.Equal(day.Add(10*time.Hour)))

	w = get(r, "/api/v1/studios/s1/rooms/r1/free?date=07-08-2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
