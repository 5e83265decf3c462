package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasterSunday(t *testing.T) {
	cases := map[int]time.Time{
		2024: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		2025: time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC),
		2026: time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC),
	}
	for year, want := range cases {
		assert.Equal(t, want, easterSunday(year), "year %d", year)
	}
}

func TestFrenchPublicHolidays(t *testing.T) {
	holidays := FrenchPublicHolidays(2025)
	require.Len(t, holidays, 11)

	byLabel := map[string]time.Time{}
	for _, h := range holidays {
		assert.Equal(t, 2025, h.Date.Year())
		byLabel[h.Label] = h.Date
	}

	assert.Equal(t, time.Date(2025, time.April, 21, 0, 0, 0, 0, time.UTC), byLabel["Lundi de Paques"])
	assert.Equal(t, time.Date(2025, time.May, 29, 0, 0, 0, 0, time.UTC), byLabel["Ascension"])
	assert.Equal(t, time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC), byLabel["Lundi de Pentecote"])
	assert.Equal(t, time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC), byLabel["Fete nationale"])
}
