package types_test

import (
	"testing"
	"time"

	"github.com/envelope-zero/tracker/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestParseMonth(t *testing.T) {
	m, err := types.ParseMonth("2024-05")
	assert.Nil(t, err)
	assert.Equal(t, types.NewMonth(2024, 5), m)
	assert.Equal(t, "2024-05", m.String())

	_, err = types.ParseMonth("05/2024")
	assert.ErrorContains(t, err, "use YYYY-MM")
}

func TestMonthOf(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	assert.Equal(t, types.NewMonth(2024, 4), types.MonthOf(time.Date(2024, 5, 1, 1, 0, 0, 0, berlin)), "months are in UTC")
}

func TestMonthSet(t *testing.T) {
	var m types.Month
	assert.Equal(t, "", m.String())
	assert.Equal(t, "month", m.Type())

	assert.Nil(t, m.Set("2023-12"))
	assert.Equal(t, types.NewMonth(2023, 12), m)

	assert.NotNil(t, m.Set("December"))
	assert.Equal(t, types.NewMonth(2023, 12), m, "a failed Set keeps the value")
}

func TestMonthRange(t *testing.T) {
	m := types.NewMonth(2023, 12)

	from, until := m.Range()
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), until)

	assert.True(t, m.Contains(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)))
}
