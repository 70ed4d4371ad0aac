package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchin/internal/domain"
)

func TestResolvePricing(t *testing.T) {
	tests := []struct {
		name       string
		studioRate *float64
		roomRate   *float64
		minutes    int
		wantRate   float64
		wantTotal  float64
	}{
		{"room rate wins", floatPtr(80), floatPtr(50), 60, 50, 50},
		{"studio fallback", floatPtr(60), nil, 90, 60, 90},
		{"rounds to cents", nil, floatPtr(10), 20, 10, 3.33},
		{"zero rate is still a rate", floatPtr(40), floatPtr(0), 120, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ResolvePricing(domain.Studio{HourlyRate: tt.studioRate}, domain.Room{HourlyRate: tt.roomRate}, tt.minutes, "EUR")
			require.NotNil(t, p)
			assert.Equal(t, tt.wantRate, p.HourlyRate)
			assert.InDelta(t, tt.wantTotal, p.Total, 0.0001)
			assert.Equal(t, "EUR", p.Currency)
		})
	}
}

func TestResolvePricing_Unpriced(t *testing.T) {
	assert.Nil(t, ResolvePricing(domain.Studio{}, domain.Room{}, 60, "USD"))
}

func TestResolvePricing_DefaultCurrency(t *testing.T) {
	p := ResolvePricing(domain.Studio{HourlyRate: floatPtr(10)}, domain.Room{}, 60, "")
	require.NotNil(t, p)
	assert.Equal(t, DefaultCurrency, p.Currency)
}
